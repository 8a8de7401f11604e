package duplicate

// compareSystemPrompt is the system prompt for LLM duplicate comparison.
const compareSystemPrompt = `You compare government policy records and identify semantic duplicates. Two policies are duplicates when they recommend substantially the same intervention, even if worded differently or in different languages.

Always respond with valid JSON. Do not include any text outside the JSON object.`

// compareUserPrompt is the user prompt template for duplicate comparison.
// Placeholders, in order: draft summary, candidate list, minimum score.
const compareUserPrompt = `A new policy is being drafted:

%s

Existing policies:
%s

Identify up to 3 existing policies that substantially duplicate the new draft. For each, return its "id" exactly as listed, a "score" from 0 to 100 for how similar it is, and a one-sentence "justification". Only include policies scoring above %d. If none qualify, return an empty matches array.

Return a JSON object: {"matches": [{"id": "...", "score": 0, "justification": "..."}]}`
