package prompt

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Per-category fallbacks used when a key is absent or empty. These mirror the
// documented defaults of each stage template.
const (
	defaultEthnicity  = "Black African"
	defaultArchetype  = "Slender"
	defaultModel      = "professional female model"
	defaultBackground = "Clean studio background"
	defaultLighting   = "Bright studio lighting"
	defaultStyle      = "Modern City"
	defaultVibe       = "Elegant & Luxurious"
	defaultLocation   = "a vibrant African city"
	defaultSubject    = "the featured product"
)

// VideoDefaultPrompt seeds the video-commercial stage.
const VideoDefaultPrompt = "A 5-second video of the model smiling and spinning in the featured product."

var titleCaser = cases.Title(language.Und)

func pick(sel Selections, key, fallback string) string {
	if v := strings.TrimSpace(sel[key]); v != "" {
		return v
	}
	return fallback
}

// StudioTemplate composes the photo-studio instruction. hasModelPhoto selects
// the entire action branch: compositing a supplied model photo with the
// product, or generating a model from the categorical description. It is a
// mode switch, not extra text appended to a shared body.
func StudioTemplate(sel Selections, hasModelPhoto bool) string {
	coreInstruction := "**OUTPUT MUST BE AN IMAGE.** You are an expert fashion e-commerce photographer and retoucher. Your task is to create a single, ultra-realistic, photorealistic, 8K image."

	var actionAndSubject string
	if hasModelPhoto {
		actionAndSubject = strings.Join([]string{
			"**Action:** Composite the two input images.",
			"- **Input Image 1 (Product):** Contains the clothing article.",
			"- **Input Image 2 (Model):** Contains the person.",
			"- **Task:** Place the product from Input Image 1 onto the person from Input Image 2. The fit must be perfect, tailored, and realistic, with accurate shadows and fabric draping.",
		}, "\n")
	} else {
		modelDescription := strings.Join([]string{
			"A " + pick(sel, KeyEthnicity, defaultEthnicity),
			pick(sel, KeyBodyArchetype, defaultArchetype),
			pick(sel, KeyModel, defaultModel),
		}, ", ")
		actionAndSubject = strings.Join([]string{
			"**Action:** Generate a new image based on the input product image.",
			"- **Input Image 1 (Product):** Contains the clothing article.",
			"- **Task:** Generate a full-body image of a " + modelDescription + " wearing the exact product from Input Image 1.",
		}, "\n")
	}

	sceneDescription := strings.Join([]string{
		"**Scene:** A professional photoshoot set against a " + pick(sel, KeyBackground, defaultBackground) + ".",
		"**Lighting:** " + pick(sel, KeyLighting, defaultLighting) + ", creating a high-end commercial look.",
	}, "\n")

	fidelityMandate := strings.Join([]string{
		"**Fidelity Mandate (CRITICAL):**",
		"- You MUST preserve the exact design, pattern, color, texture, and details of the clothing from the input image.",
		"- You MUST preserve the exact cut, length, and style of the clothing. For example, if the input is a short dress, the output must be a short dress of the same length.",
		"- **DO NOT alter the garment's design in any way.** Your task is to place it on a model, not redesign it.",
	}, "\n")

	return strings.Join([]string{coreInstruction, actionAndSubject, sceneDescription, fidelityMandate}, "\n\n")
}

// AdTemplate composes the ad-campaign instruction from the merged selection
// set and the user's product description.
func AdTemplate(sel Selections, productDescription string) string {
	location := NormalizeLocation(pick(sel, KeyLocation, defaultLocation))
	style := pick(sel, KeyStyle, defaultStyle)
	vibe := pick(sel, KeyVibe, defaultVibe)
	subject := strings.TrimSpace(productDescription)
	if subject == "" {
		subject = defaultSubject
	}

	coreInstruction := "**OUTPUT MUST BE AN IMAGE.** You are an expert creative director and retoucher for a high-end advertising campaign. Your task is to take the subject from the input image and place them into a new, photorealistic, 8K scene."

	actionAndSubject := strings.Join([]string{
		"**Action:** Re-contextualize the subject from the input image into a new environment.",
		"- **Input Image:** Contains the model wearing the product. This is your primary asset.",
		"- **Task:** Create a new scene as described below, featuring the *exact same person and attire* from the Input Image.",
	}, "\n")

	sceneDescription := strings.Join([]string{
		"**New Scene:** A professional advertising photograph.",
		"- **Environment:** A " + style + " setting in " + location + ".",
		"- **Vibe & Mood:** The scene should feel " + vibe + ".",
		"- **Lighting:** Cinematic, professional lighting that matches the new environment perfectly.",
		"- **Product Context:** The model is wearing: " + subject + ".",
	}, "\n")

	fidelityMandate := strings.Join([]string{
		"**Fidelity Mandate (CRITICAL):**",
		"- It is critical that you maintain the exact appearance of the person and their attire from the Input Image.",
		"- You MUST preserve the exact design, pattern, color, texture, details, cut, length, and style of the clothing.",
		"- **DO NOT change the garment or the model's appearance.** Your only job is to place them seamlessly into the new scene.",
	}, "\n")

	return strings.Join([]string{coreInstruction, actionAndSubject, sceneDescription, fidelityMandate}, "\n\n")
}

// NormalizeLocation tidies free-form city input. Fully lowercase input is
// title-cased ("nairobi west" -> "Nairobi West"); anything already carrying
// capitals is the user's own casing and passes through.
func NormalizeLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return location
	}
	if location == strings.ToLower(location) {
		return titleCaser.String(location)
	}
	return location
}
