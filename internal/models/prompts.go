package models

const (
	// DocumentSeparator marks document boundaries when several documents
	// are concatenated before chunking.
	DocumentSeparator = "\n\n---DOCUMENT SEPARATOR---\n\n"

	// UntitledRisk is the backfill title for a risk entry the model
	// returned without one.
	UntitledRisk = "Untitled Risk"
)

// AnswerPromptTemplate grounds a free-form question in retrieved context.
// Placeholders: context block, user question.
const AnswerPromptTemplate = `You are a helpful legal document assistant. Answer the user's question based on the following document context.

Document Context:
%s

User Question: %s

Provide a clear, concise, and accurate answer based solely on the document context provided. If the context doesn't contain enough information to answer the question, say so. Do not make up information.

Answer:`

// AnalysisPromptTemplate asks for a structured analysis of a full document.
// Placeholder: document text (already truncated by the caller).
const AnalysisPromptTemplate = `You are a legal clarity assistant specializing in analyzing legal documents and contracts.
Analyze the following document and provide a comprehensive structured analysis.

Document Text:
%s

Please analyze this document and return a JSON object with the following structure:
{
    "summary": ["point 1", "point 2", ...],
    "key_terms": ["term1", "term2", ...],
    "obligations": {
        "Party A": ["obligation 1", "obligation 2"],
        "Party B": ["obligation 1", "obligation 2"]
    },
    "costs_and_payments": ["cost/payment point 1", ...],
    "risks": [
        {
            "title": "Risk title",
            "why_it_matters": "Explanation of why this risk matters",
            "where_found": "Section or clause reference (optional)",
            "mitigations": ["mitigation 1", "mitigation 2"]
        }
    ],
    "red_flags": ["flag 1", "flag 2", ...],
    "questions_to_ask": ["question 1", "question 2", ...],
    "negotiation_suggestions": ["suggestion 1", ...],
    "decision_assist": {
        "pros": ["pro 1", "pro 2", ...],
        "cons": ["con 1", "con 2", ...],
        "overall_take": "Overall assessment and recommendation"
    }
}

IMPORTANT: Return ONLY valid JSON. Do not include any markdown formatting, code blocks, or additional text.
The JSON must be valid and parseable.`
