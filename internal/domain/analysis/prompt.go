package analysis

import "strings"

const promptHeader = `You are an expert nutrition and health analyst. Below is text from a product label.

PRODUCT LABEL TEXT:
`

const promptInstructions = `

Perform two tasks:
1.  **Extraction**: Identify the product name and all ingredients from the text.
2.  **Analysis**: Provide a full health and safety analysis of the identified ingredients, personalized for the user's health profile.

Return a SINGLE JSON object with this EXACT format:
{
    "extraction": {
        "product_name": "The exact product name",
        "ingredients": ["ingredient1", "ingredient2", "..."],
        "product_type": "food/medicine/supplement/beverage/other"
    },
    "analysis": {
        "overall_safety_score": <number from 0-100>,
        "traffic_light": "Green/Yellow/Red",
        "summary": "A brief, personalized summary of the analysis.",
        "harmful_ingredients": [
            {
                "ingredient": "ingredient_name",
                "reason": "Why it's harmful, especially for the user.",
                "description": "A brief explanation of what this ingredient is.",
                "identification": "How to spot this ingredient on labels (e.g., other names)."
            }
        ],
        "recommendations": "Suggest 2–3 healthier alternatives of the same product type (e.g., if chocolate → dark or sugar-free chocolate; if chips → baked or multigrain chips) with a short reason for why each is healthier.",
        "precautionary_tips": [
            "What to do if you've already consumed the product (e.g., 'Stay hydrated')."
        ]
    }
}

Rules:
- If no ingredients are found, return an empty list for "ingredients".
- The safety score must be an integer from 0 to 100.
- The traffic light is Green (>=80), Yellow (50-79), or Red (<50).
- Personalize the analysis based on the user's full profile (age, gender, conditions, allergies, lifestyle, etc.).
- Provide detailed, actionable information for the 'description', 'identification', and 'precautionary_tips' fields.
- Return ONLY the JSON object and nothing else.`

// BuildPrompt embeds the label text verbatim, followed by the profile block
// when the profile has any populated attribute.
func BuildPrompt(text string, profile Profile) string {
	block := profileBlock(profile)

	var b strings.Builder
	b.Grow(len(promptHeader) + len(text) + len(block) + len(promptInstructions) + 1)
	b.WriteString(promptHeader)
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(block)
	b.WriteString(promptInstructions)
	return b.String()
}
