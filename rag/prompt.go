package rag

import (
	"fmt"
	"strings"
)

// System prompts paired with each user prompt builder.
const (
	SystemQA       = "You analyze leases."
	SystemSummary  = "You are an assistant that summarizes residential leases."
	SystemTerms    = "You extract structured JSON data from residential leases."
	SystemRedFlags = "You carefully identify potentially risky lease clauses as JSON."
)

// ContextSeparator sits between retrieved excerpts in the QA prompt.
const ContextSeparator = "\n\n---\n\n"

// JoinContext joins retrieved excerpts for BuildQAPrompt.
func JoinContext(chunks []string) string {
	return strings.Join(chunks, ContextSeparator)
}

const qaTemplate = `
You are an assistant that helps a tenant understand their lease agreement.

You will be given EXCERPTS from the lease.
Your job is to answer the question ONLY using the information in these excerpts.
If something is not clearly stated in the lease text, say you cannot be certain.

LEASE TEXT (EXCERPTS):
"""%s"""

QUESTION:
%s

INSTRUCTIONS:
- Cite specific phrases or sections from the excerpts when possible (in plain language).
- If the lease text doesn't clearly answer, explicitly say: "The lease text here does not clearly specify this."
- Explain in simple, non-legal language.
`

// BuildQAPrompt asks for an answer grounded only in the given excerpts.
func BuildQAPrompt(leaseContext, question string) string {
	return strings.TrimSpace(fmt.Sprintf(qaTemplate, leaseContext, question))
}

const summaryTemplate = `
You are an assistant that summarizes residential lease agreements.

Here is the lease text (it may be partial, but do your best):
"""%s"""

Summarize this lease for a non-expert tenant using bullet points.
Include, if possible:
- Monthly rent and payment schedule
- Lease start and end dates
- Security deposit
- Late fee rules
- Who pays for utilities
- Rules about pets
- Termination / notice requirements
- Any obvious red flags or unusual clauses

Be concise but clear.
`

// BuildSummaryPrompt asks for a bullet-point summary of the lease text.
func BuildSummaryPrompt(leaseText string) string {
	return strings.TrimSpace(fmt.Sprintf(summaryTemplate, leaseText))
}

const termsTemplate = `
You are an assistant that extracts key information from a residential lease agreement.

Read the lease text below and return a SINGLE JSON object with EXACTLY these keys:

%s

Rules:
- If a field is not clearly specified, set its value to null.
- All values must be either a string or null.
- Do NOT include any extra keys.
- Do NOT include any surrounding explanation, markdown, or text. Only output the JSON.

LEASE TEXT:
"""%s"""
`

// BuildTermsPrompt asks for a JSON object holding exactly the given keys.
func BuildTermsPrompt(leaseText string, keys []string) string {
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("- %q", k)
	}
	return strings.TrimSpace(fmt.Sprintf(termsTemplate, strings.Join(lines, "\n"), leaseText))
}

const redFlagTemplate = `
You are a cautious assistant that reviews a residential lease agreement
and identifies potentially risky or tenant-unfriendly clauses.

Read the lease text below and return a SINGLE JSON object with EXACTLY this structure:

{
  "flags": [
    {
      "id": "short_identifier_like_late_fee_high",
      "title": "Short human-readable name of the issue",
      "severity": "low" | "medium" | "high",
      "clause_text": "Exact or near-exact text from the lease that triggered this flag",
      "explanation": "Plain language explanation of why this might be risky for the tenant"
    },
    ...
  ]
}

Rules:
- If there are no obvious issues, return { "flags": [] }.
- Only include clauses that might reasonably disadvantage or surprise a tenant.
- Do NOT add any keys other than "flags".
- Do NOT add any explanation outside of the JSON. Only output JSON.

Examples of possible issues:
- Unusually high late fees or vague "penalties"
- Landlord entry with no notice
- Tenant responsible for all repairs or structural issues
- Automatic rent increases without clear limits
- Very long notice periods for move-out
- Non-refundable "deposits" that are unusual

LEASE TEXT:
"""%s"""
`

// BuildRedFlagPrompt asks for a {"flags": [...]} object describing risky clauses.
func BuildRedFlagPrompt(leaseText string) string {
	return strings.TrimSpace(fmt.Sprintf(redFlagTemplate, leaseText))
}
