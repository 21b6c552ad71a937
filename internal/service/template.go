package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/socialmagic/content-engine/internal/apperrors"
	"github.com/socialmagic/content-engine/internal/models"
)

// BrandContext is the resolved brand profile handed to the content
// provider and to prompt templates. Empty profile fields are already
// replaced with the documented defaults.
type BrandContext struct {
	BrandName          string
	BrandDescription   string
	BrandVoice         string
	BrandStyle         string
	TargetAudience     string
	Industry           string
	ContentThemes      []string
	HashtagPreferences []string
	AIInstructions     string
}

const (
	DefaultBrandName      = "Your Brand"
	DefaultBrandVoice     = "Professional and engaging"
	DefaultTargetAudience = "General audience"
)

func BrandContextFromProfile(p *models.BusinessProfile) BrandContext {
	ctx := BrandContext{
		BrandName:          p.BrandName,
		BrandDescription:   p.BrandDescription,
		BrandVoice:         p.BrandVoice,
		BrandStyle:         p.BrandStyle,
		TargetAudience:     p.TargetAudience,
		Industry:           p.Industry,
		ContentThemes:      p.ContentThemes,
		HashtagPreferences: p.HashtagPreferences,
		AIInstructions:     p.AIInstructions,
	}
	if ctx.BrandName == "" {
		ctx.BrandName = DefaultBrandName
	}
	if ctx.BrandVoice == "" {
		ctx.BrandVoice = DefaultBrandVoice
	}
	if ctx.TargetAudience == "" {
		ctx.TargetAudience = DefaultTargetAudience
	}
	return ctx
}

func (b BrandContext) placeholders() map[string]string {
	return map[string]string{
		"brand_name":        b.BrandName,
		"brand_description": b.BrandDescription,
		"brand_voice":       b.BrandVoice,
		"brand_style":       b.BrandStyle,
		"target_audience":   b.TargetAudience,
		"industry":          b.Industry,
		"ai_instructions":   b.AIInstructions,
	}
}

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// RenderTemplate substitutes the closed set of {placeholder} names in a
// campaign prompt template. A placeholder outside the set is a
// ValidationError: the template author has to fix it, retrying won't.
func RenderTemplate(template string, brand BrandContext) (string, error) {
	values := brand.placeholders()

	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if _, ok := values[match[1]]; !ok {
			return "", apperrors.NewValidation("prompt_template",
				fmt.Sprintf("unknown placeholder {%s}", match[1]))
		}
	}

	result := template
	for name, value := range values {
		result = strings.ReplaceAll(result, "{"+name+"}", value)
	}
	return result, nil
}
