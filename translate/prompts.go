package translate

// translateSystemPrompt is the system prompt for Arabic to English policy
// translation.
const translateSystemPrompt = `You translate official Arabic government policy text into formal English. Preserve legal and regulatory terminology precisely. Do not summarize, embellish, or omit content.

Always respond with valid JSON. Do not include any text outside the JSON object.`

// translateUserPrompt is the user prompt template. Placeholder: the
// numbered Arabic source fields, one per line.
const translateUserPrompt = `Translate the following Arabic policy fields into English. Keys are stable identifiers; translate only the values.

%s

Return a JSON object mapping each key to its English translation, for example: {"title": "...", "recommendation": "..."}. Include every key you were given and no others.`
