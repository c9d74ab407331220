package actions

import (
	"sort"

	"convflow/internal/domain"
	"convflow/internal/flow"
)

// FriendlyIntentNames maps an intent name to the label shown for it when
// the default action offers the user a disambiguation menu. Only
// intents present in this map are eligible to appear in that menu; the
// rest of the classifier's ranking is considered too obscure to surface.
var FriendlyIntentNames = map[string]string{
	"WorkTimesBreaches":          "Work time breaches",
	"WorkingTimeBreachDiscipline": "Work time discipline",
	"HolidaysOff":                "Holidays",
	"AnnualLeaveApplicationProcess": "Annual leave process",
	"WorkingHours":               "Working time",
	"WorkingDay":                 "Working day",
	"BreakTime":                  "Break time",
	"Pregnant":                   "Pregnant policies",
	"AttendanceRecord":           "Attendance checking",
	"LaborContract":              "Labor contract",
	"Recruitment":                "Recruitment",
	"SickLeave":                  "Sick leave",
	"UnpaidLeave":                "Unpaid leave",
	"PaidLeaveForFamilyEvent":    "Family events",
	"UnusedAnnualLeave":          "Unused annual leave",
	"RegulatedAnnualLeave":       "Regulated Annual Leave",
}

const maxFallbackOptions = 5

// DefaultAction is the action fired when the classifier's top intent has
// no registered ActionMap entry, or a trigger_intent could not resolve a
// name at all. It offers the user the top-ranked intents it recognizes
// (restricted to FriendlyIntentNames), plus a trailing option to
// restart the conversation.
type DefaultAction struct{}

// Name implements Action.
func (DefaultAction) Name() string { return "default" }

// Call implements Action.
func (DefaultAction) Call(intent flow.Intent, _ []flow.Entity, _ flow.Slots) flow.EventOutput {
	ranked := topRankedFriendlyIntents(intent.Ranking, maxFallbackOptions)

	titles := make([]string, 0, len(ranked)+1)
	eventsMap := make(map[string]flow.Trigger, len(ranked)+1)
	for _, name := range ranked {
		title := FriendlyIntentNames[name]
		literal := name
		titles = append(titles, title)
		eventsMap[title] = flow.Trigger{Events: []flow.Event{flow.TriggerIntentEvent{Literal: &literal}}}
	}

	restartLiteral := domain.RestartIntent
	titles = append(titles, "Restart")
	eventsMap["Restart"] = flow.Trigger{Events: []flow.Event{flow.TriggerIntentEvent{Literal: &restartLiteral}}}

	return flow.EventOutput{Button: &flow.ButtonOutput{
		Text:        "Sorry, I don't understand, what do you mean?",
		Titles:      titles,
		EventsMap:   eventsMap,
		SynonymDict: map[string]string{},
	}}
}

// topRankedFriendlyIntents restricts the ranking to names present in
// FriendlyIntentNames before taking the top limit, so a curated option
// is never displaced by a higher-ranked intent with no friendly label.
func topRankedFriendlyIntents(ranking map[string]float64, limit int) []string {
	names := make([]string, 0, len(ranking))
	for name := range ranking {
		if _, ok := FriendlyIntentNames[name]; ok {
			names = append(names, name)
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return ranking[names[i]] > ranking[names[j]]
	})
	if len(names) > limit {
		names = names[:limit]
	}
	return names
}
