// Package platform classifies requests by their User-Agent.
package platform

import (
	"regexp"
	"strings"

	"github.com/iconidentify/farlinker/internal/domain"
)

const (
	// appleMessagesToken is only sent by the iMessage link preview fetcher.
	appleMessagesToken = "facebookexternalhit/1.1 Facebot Twitterbot/1.0"
	// sharedCrawlerToken is also sent by WhatsApp and Apple Messages.
	sharedCrawlerToken = "facebookexternalhit/1.1"
	facebookToken      = "facebookexternalhit"
)

var botRegex = regexp.MustCompile(`(?i)\b(bot|crawler|spider|crawling|facebookexternalhit|twitterbot|telegrambot|discordbot|slackbot|linkedinbot|opengraph|metainspector|whatsapp|telegram|validator)\b`)

// Detect derives the platform profile of a User-Agent. Unknown agents
// yield a zero profile.
func Detect(userAgent string) domain.PlatformProfile {
	lower := strings.ToLower(userAgent)

	var p domain.PlatformProfile
	p.IsAppleMessages = strings.Contains(userAgent, appleMessagesToken)
	p.IsWhatsApp = strings.Contains(lower, "whatsapp") ||
		(strings.Contains(userAgent, sharedCrawlerToken) &&
			!strings.Contains(userAgent, "Twitterbot") &&
			!strings.Contains(userAgent, "Facebot"))
	p.IsTelegram = strings.Contains(lower, "telegram")
	// Must run after the Apple and WhatsApp rules; all three share the token.
	p.IsFacebook = strings.Contains(userAgent, facebookToken) && !p.IsAppleMessages && !p.IsWhatsApp
	p.IsLinkedIn = strings.Contains(lower, "linkedinbot")
	p.PrefersStandardPreview = p.IsWhatsApp || p.IsTelegram || p.IsFacebook || p.IsLinkedIn
	return p
}

// IsBot reports whether the User-Agent belongs to a crawler or link previewer.
// Empty or unknown agents are treated as humans.
func IsBot(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	return botRegex.MatchString(userAgent)
}

// Name returns a stable label for logs and metrics.
func Name(p domain.PlatformProfile) string {
	switch {
	case p.IsAppleMessages:
		return "apple_messages"
	case p.IsWhatsApp:
		return "whatsapp"
	case p.IsTelegram:
		return "telegram"
	case p.IsFacebook:
		return "facebook"
	case p.IsLinkedIn:
		return "linkedin"
	default:
		return "generic"
	}
}

// IsMessaging reports whether the platform is a messaging app with tighter
// preview size limits.
func IsMessaging(p domain.PlatformProfile) bool {
	return p.IsWhatsApp || p.IsTelegram
}
