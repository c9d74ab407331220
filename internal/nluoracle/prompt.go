package nluoracle

import (
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const systemTemplate = `You are an expert NLU system for a closed-domain conversation flow. Follow the instructions precisely and return structured output.

-Goal-
Given a user utterance, detect the user's **intent** and any **entities**. You are given the complete closed list of intents and entity types this system understands; you must not invent names outside these lists.

STRICT RULES:
1. You MUST ONLY use intent and entity names from the provided lists.
2. If the utterance does not clearly match any intent, pick the closest one and give it low confidence.
3. Only extract entities that are EXPLICITLY present in the current message text.

-Steps-
1. Identify up to 3 candidate intents ranked by confidence.
Format each as:
(intent{TD}<intent_name>{TD}<confidence>)

2. Identify every entity present in the message.
Format each as:
(entity{TD}<entity_type>{TD}<entity_text>)

3. Return the output as a list separated by **{RD}**.

4. When complete, return {CD}

######################
-Example-
######################

text: I need to request annual leave for office hours staff
intents: greet, restart, AnnualLeaveApplicationProcess, default
entities: working_type
######################
Output:
(intent{TD}AnnualLeaveApplicationProcess{TD}0.92)
{RD}
(intent{TD}default{TD}0.08)
{RD}
(entity{TD}working_type{TD}office hours)
{RD}
{CD}`

const userTemplate = `text: {input_text}
intents: {intents}
entities: {entities}

Output:`

func buildTemplate(cfg Config) prompt.ChatTemplate {
	replacer := strings.NewReplacer(
		"{TD}", cfg.TupleDelimiter,
		"{RD}", cfg.RecordDelimiter,
		"{CD}", cfg.CompletionDelimiter,
	)
	systemText := replacer.Replace(systemTemplate)

	messages := []schema.MessagesTemplate{
		schema.SystemMessage(systemText),
		schema.UserMessage(userTemplate),
	}
	return prompt.FromMessages(schema.FString, messages...)
}
