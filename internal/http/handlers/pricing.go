package handlers

import "net/http"

type pricingTier struct {
	Tier        string   `json:"tier"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Popular     bool     `json:"popular,omitempty"`
}

var pricingTiers = []pricingTier{
	{
		Tier:        "Starter",
		Price:       "Free",
		Description: "A taste of AI power. Perfect for getting started and seeing the potential.",
		Features: []string{
			"3 Background Removals/month",
			"3 AI Scene Generations (Watermarked)",
			"No Video Generation",
		},
	},
	{
		Tier:        "Creator",
		Price:       "Ksh 800",
		Description: "For the dedicated artisan ready to build a consistent, professional brand online.",
		Features: []string{
			"Up to 1,000 Background Removals",
			"20 HD Scene Generations",
			"3 Video Clips (5-sec each)",
			"Remove Watermarks",
		},
	},
	{
		Tier:        "Business",
		Price:       "Ksh 1,500",
		Description: "The ultimate toolkit for serious entrepreneurs focused on scaling their brand and sales.",
		Features: []string{
			"Everything in Creator",
			"50 HD Scene Generations",
			"10 Video Clips",
			"Save Your Custom Model",
			"Priority Rendering Queue",
			"Batch Upload (10 images)",
		},
		Popular: true,
	},
	{
		Tier:        "Studio",
		Price:       "Ksh 5,000",
		Description: "For agencies and power users managing multiple brands with high-volume needs.",
		Features: []string{
			"Everything in Business",
			"Up to 500 Scene Generations",
			"30 Video Clips",
			"Team Seats (Up to 3 Users)",
			"White-Label Branding",
			"Dedicated Support",
		},
	},
}

// Pricing returns the static plan catalog.
func (a *App) Pricing(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"tiers": pricingTiers})
}
