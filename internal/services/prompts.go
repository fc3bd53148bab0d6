package services

import (
	"fmt"
	"sort"
	"strings"
)

// Prompt templates for every AI interaction. Placeholders use {name} and are
// filled by simple substitution.

var agentPrompts = map[string]string{
	"benchmarking": `You are a benchmarking specialist. Analyze and compare the following data against industry standards. Provide specific metrics and recommendations.

Context: {context}

Please provide:
1. Key performance indicators
2. Industry comparisons
3. Recommendations for improvement`,

	"persona_generation": `You are an expert in creating detailed user personas. Generate a comprehensive persona based on the following information.

Context: {context}

Please provide:
1. Demographics
2. Goals and motivations
3. Pain points
4. Behavioral patterns`,

	"data_analysis": `You are a data analyst. Analyze the following data and provide actionable insights.

Context: {context}

Please provide:
1. Key findings
2. Trends and patterns
3. Statistical insights
4. Recommendations`,

	"report_writing": `You are a professional report writer. Create a comprehensive, well-structured report on the following topic.

Context: {context}

Please provide:
1. Executive summary
2. Detailed analysis
3. Conclusions
4. Recommendations`,
}

var taskPrompts = map[string]string{
	"summarize": `Please provide a concise summary of the following text. Focus on the main points and key takeaways.

Text to summarize:
{content}

Summary:`,

	"analyze": `Analyze the following content and provide insights.

Content:
{content}

Analysis:`,

	"suggest_next_steps": `Based on the following task information, suggest logical next steps.

Task: {title}
Description: {description}
Current Status: {status}

Suggested next steps:`,

	"extract_action_items": `Extract action items from the following text.

Text:
{content}

Action items:`,
}

const systemPrompt = `You are Alex, a helpful AI assistant for task management and productivity. You help users manage tasks, analyze data, and make informed decisions.`

var chatPrompts = map[string]string{
	"system": systemPrompt,

	"task_context": `You are helping with the following task:

Title: {title}
Description: {description}
Status: {status}
Urgent: {urgent}

User question: {question}

Your response:`,

	"group_chat_context": `You are participating in a group chat for the following task:

Task: {title}
Recent messages:
{messages}

User question: {question}

Your response:`,
}

func fillTemplate(template string, vars map[string]string) string {
	out := template
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}

// AgentPrompt resolves a named agent template. Names are normalized to
// lowercase with spaces as underscores.
func AgentPrompt(agentName, context string) (string, error) {
	key := strings.ReplaceAll(strings.ToLower(agentName), " ", "_")
	template, ok := agentPrompts[key]
	if !ok {
		return "", fmt.Errorf("unknown agent: %s", agentName)
	}
	return fillTemplate(template, map[string]string{"context": context}), nil
}

func TaskPrompt(promptType string, vars map[string]string) (string, error) {
	template, ok := taskPrompts[promptType]
	if !ok {
		return "", fmt.Errorf("unknown task prompt: %s", promptType)
	}
	return fillTemplate(template, vars), nil
}

func ChatPrompt(promptType string, vars map[string]string) (string, error) {
	template, ok := chatPrompts[promptType]
	if !ok {
		return "", fmt.Errorf("unknown chat prompt: %s", promptType)
	}
	return fillTemplate(template, vars), nil
}

func ListAgents() []string {
	names := make([]string, 0, len(agentPrompts))
	for name := range agentPrompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
