// Package generation holds the request-independent core of a résumé optimization:
// the prompt sent to the model, validation of the model's answer, and the outcome
// type returned to callers.
package generation

import "strings"

// ResultFields are the keys the model must return. BuildPrompt and Validate agree on them.
var ResultFields = [4]string{"ats_score", "ats_recommendations", "optimized_resume", "cover_letters"}

const promptHeader = `You are an expert career consultant specializing in résumé optimization for Applicant Tracking Systems (ATS).

Analyze the candidate's résumé against the job description, then:

1. Calculate an ATS-compatibility score (0-100): how well the résumé matches this vacancy by keywords, skills and experience.

2. Give 3-5 concrete recommendations for improving ATS compatibility.

3. Write an optimized version of the résumé that:
   - Contains the keywords from the vacancy
   - Follows a clear structure: Contacts | Objective | Experience | Education | Skills
   - Uses strong action verbs
   - Is tailored to this specific vacancy

4. Write 2 cover letter variants:
   - Formal (for large companies)
   - Informal and personal (for startups and IT)

CANDIDATE RÉSUMÉ:
`

const promptVacancy = `

JOB DESCRIPTION:
`

const promptContract = `

Respond STRICTLY with a single JSON object (no markdown wrapping, no code fences, no text before or after it):
{
  "ats_score": integer from 0 to 100,
  "ats_recommendations": ["recommendation 1", "recommendation 2", ...],
  "optimized_resume": "full text of the optimized résumé",
  "cover_letters": ["letter 1 (formal)", "letter 2 (informal)"]
}`

// BuildPrompt returns the instruction block for one résumé/vacancy pair. The output is a pure
// function of its inputs, so the automatic and manual paths see byte-identical prompts.
func BuildPrompt(resumeText, vacancyText string) string {
	var b strings.Builder
	b.Grow(len(promptHeader) + len(resumeText) + len(promptVacancy) + len(vacancyText) + len(promptContract))
	b.WriteString(promptHeader)
	b.WriteString(resumeText)
	b.WriteString(promptVacancy)
	b.WriteString(vacancyText)
	b.WriteString(promptContract)
	return b.String()
}
