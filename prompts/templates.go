package prompts

import "strings"

// Render substitutes {name} placeholders in a template. Unknown
// placeholders are left in place so a missing variable is visible in
// the rendered prompt rather than silently blank.
func Render(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// InterviewerPersona asks the model to invent an interviewer
const InterviewerPersona = `You will help me generate virtual interviews for a research project on "{study_name}". I have an interview script with questions for various stakeholder groups and need to simulate realistic interviews.

Please create a detailed persona for an interviewer with the following characteristics:
- A name
- Age (30-65)
- Professional background in consulting, research, or journalism
- Interview style characteristics (e.g., formal, conversational, detail-oriented)
- Level of expertise in AI and consulting
- Educational background
- Years of experience conducting interviews
- Personal communication style

Make this persona realistic and provide enough detail that I can understand how they would conduct an interview.`

// IntervieweePersona asks the model to invent a stakeholder for a category
const IntervieweePersona = `Create a detailed persona for a {category} to be interviewed for a research project on "{study_name}".

Include the following details:
- Name
- Age (appropriate for their role)
- Position/Title
- Company/Organization (fictional but realistic)
- Years of experience
- Educational background
- Brief professional history
- Areas of expertise
- Personal communication style
- Views on AI (ranging from enthusiastic to skeptical)

Make this persona realistic and detailed. Their background should be consistent with the role of {category}.`

// InterviewGeneration simulates the interview dialogue itself
const InterviewGeneration = `You are conducting an interview about AI in consulting. Please generate a realistic interview between these two personas:

INTERVIEWER: {interviewer_name}, {interviewer_role}

INTERVIEWEE: {interviewee_name}, {interviewee_role}

CONTEXT: This interview is with a {category} about AI in consulting firms.

The interview should focus on:
1. Current state of AI adoption in consulting
2. Market trends in the consulting industry related to AI
3. Impact of AI on automation and knowledge management in consulting
4. Ethical considerations and risks of AI in consulting

The interview should include at least 5 questions and detailed, thoughtful responses that demonstrate the interviewee's unique perspective as a {category}.

Format the interview as a back-and-forth conversation, with each person's name followed by a colon and then their dialogue.
The interview should be about 1000-1500 words.`

// ScriptedInterviewGeneration is used instead of InterviewGeneration
// when a parsed interview script exists for the category.
const ScriptedInterviewGeneration = `I'd like you to simulate an interview between an interviewer and a stakeholder in the consulting industry about AI adoption.

INTERVIEWER PERSONA:
{interviewer_name}, {interviewer_role}

STAKEHOLDER PERSONA:
{interviewee_name}, {interviewee_role}

INTERVIEW SCRIPT:
{script}

Please simulate a realistic interview conversation following this exact script. The conversation should:
1. Start with the introduction
2. Cover the demographic questions
3. Proceed through each research question section in order
4. Include natural follow-up questions when appropriate
5. End with the closing

The stakeholder's responses should reflect their background, expertise, and views on AI as defined in their persona. The interviewer should maintain their defined interview style.

Important: Follow the script questions precisely - don't skip any sections or questions. The goal is to generate a realistic interview that addresses all the research questions.`

// XMLFormatting converts a raw transcript into the archival XML shape
const XMLFormatting = `Please format the following interview conversation into XML format according to this structure:

<conversation_set>
  <conversation id="{interview_id}">
    <personas>
      <interviewer>
        {interviewer_name}, {interviewer_role}
      </interviewer>
      <respondent>
        {interviewee_name}, {interviewee_role}
      </respondent>
    </personas>
    <dialogue>
      <interviewer_line>[Line from the interviewer]</interviewer_line>
      <respondent_line>[Response from the stakeholder]</respondent_line>
      [Repeat interviewer_line and respondent_line for the entire conversation]
    </dialogue>
  </conversation>
</conversation_set>

Here's the interview conversation:

{interview_text}`

// InterviewAnalysis produces the nine-section structured analysis
const InterviewAnalysis = `Analyze the following interview about AI in consulting between {interviewer_name} and {interviewee_name}, who is a {category}.
Provide a structured analysis with these sections:

INTERVIEW TEXT:
{interview_text}

Please format your analysis with these clear sections:

1. KEY POINTS: Summarize the 3-5 most important points from the interview.

2. NOTABLE QUOTES: Extract 2-3 direct quotes that best represent the interviewee's perspective.

3. AI ATTITUDES: Analyze the interviewee's attitude toward AI in consulting (positive, negative, neutral, nuanced).

4. RQ1 INSIGHTS: What insights does this interview provide about the state of AI adoption in consulting?

5. RQ2 INSIGHTS: What insights does this interview provide about current market trends in consulting?

6. RQ3 INSIGHTS: What insights does this interview provide about automation and knowledge management?

7. RQ4 INSIGHTS: What insights does this interview provide about ethical considerations and risks?

8. CONTRADICTIONS: Note any contradictions or inconsistencies in the interviewee's statements.

9. AUTHENTICITY ASSESSMENT: Evaluate how authentic and realistic this interview feels.`

// StakeholderSummary synthesizes one category's analyses
const StakeholderSummary = `Create a comprehensive synthesis of findings from {count} interviews with {category} stakeholders about AI in consulting.

ANALYSES:
{analyses}

Please generate TWO sections:

## EXECUTIVE SUMMARY
Write a 400-500 word executive summary that:
1. Synthesizes the key findings across all {category} interviews
2. Identifies common themes and patterns
3. Highlights unique perspectives from this stakeholder group
4. Explains the significance of these findings

## PRESENTATION BULLETS
Create concise, presentation-ready bullet points organized by:

### Key Findings
- [3 bullet points on main findings]

### AI Adoption (RQ1)
- [2-3 bullet points]

### Market Trends (RQ2)
- [2-3 bullet points]

### Automation & Knowledge (RQ3)
- [2-3 bullet points]

### Ethical Considerations (RQ4)
- [2-3 bullet points]

Keep each bullet point clear, specific, and under 15 words.`

// FinalReport synthesizes across all stakeholder categories
const FinalReport = `Create a comprehensive research report on "The Role of AI in Consulting" based on interviews with {count} different stakeholder groups:
{categories}

STAKEHOLDER SUMMARIES:
{summaries}

Please generate a complete research report with these sections:

# AI in Consulting: Comprehensive Research Report

## Executive Summary
[400-500 word executive summary of the entire research]

## Key Findings for Presentation
[Create 3-4 bullet points for each of these sections:]
- Overall Insights
- AI Adoption Status
- Market Trends
- Automation & Knowledge Effects
- Ethical Considerations
- Recommendations for Consulting Firms

## Stakeholder Perspectives
[For each stakeholder group, provide a 1-2 paragraph summary of their unique perspective]

## Cross-Category Analysis
[400-500 word analysis comparing and contrasting views across stakeholder groups]

## Research Questions Analysis
[For each research question (RQ1-RQ4), provide a 1-2 paragraph synthesis across all stakeholders]

## Methodology
[Brief explanation of the interview methodology]

Focus on synthesizing insights across stakeholder groups and identifying patterns, contradictions, and consensus points.`
