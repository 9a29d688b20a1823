// Package anonymize strips personally identifying fragments from chat
// message text before it is archived.
package anonymize

import (
	"regexp"
	"unicode/utf8"
)

// MaxLength is the maximum number of runes kept after redaction.
const MaxLength = 200

// Replacement tokens.
const (
	UserToken    = "@[USER]"
	ChannelToken = "#[CHANNEL]"
	RoleToken    = "@[ROLE]"
	LinkToken    = "[LINK]"
	DateToken    = "[DATE]"
	TimeToken    = "[TIME]"
	EmailToken   = "[EMAIL]"
)

const maxPasses = 8

// An "@" directly after a word character may belong to an address, so it is
// left to the e-mail rule and swept by StrayMentionPattern afterwards. "<@"
// followed by digits is a platform mention handled by the next rule; a
// named one is caught here.
var (
	MentionPattern        = regexp.MustCompile(`(^|[^\w<])@\w+|<@!?[A-Za-z_]\w*>?`)
	UserMentionPattern    = regexp.MustCompile(`<@!?\d+>`)
	ChannelMentionPattern = regexp.MustCompile(`<#\d+>`)
	RoleMentionPattern    = regexp.MustCompile(`<@&\d+>`)
	LinkPattern           = regexp.MustCompile(`https?://\S+`)
	DatePattern           = regexp.MustCompile(`\b\d{4}[-/]\d{2}[-/]\d{2}\b`)
	TimePattern           = regexp.MustCompile(`\b\d{2}:\d{2}\b`)
	EmailPattern          = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	StrayMentionPattern   = regexp.MustCompile(`@\w+`)
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Order matters: mentions go before links, dates/times after mentions, and
// the stray mention sweep after e-mail addresses.
var rules = []rule{
	{MentionPattern, "${1}" + UserToken},
	{UserMentionPattern, UserToken},
	{ChannelMentionPattern, ChannelToken},
	{RoleMentionPattern, RoleToken},
	{LinkPattern, LinkToken},
	{DatePattern, DateToken},
	{TimePattern, TimeToken},
	{EmailPattern, EmailToken},
	{StrayMentionPattern, UserToken},
}

// Patterns returns every pattern Anonymize redacts, in application order.
func Patterns() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.pattern)
	}
	return out
}

// Anonymize redacts mentions, links, dates, times and e-mail addresses from
// text and truncates the result to MaxLength runes. It never fails.
//
// Redaction is repeated until the output is stable so that a replacement or
// the truncation cannot leave a fresh match behind.
func Anonymize(text string) string {
	out := text
	for range maxPasses {
		next := Truncate(redact(out))
		if next == out {
			return out
		}
		out = next
	}
	return out
}

// Truncate cuts s to at most MaxLength runes.
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxLength {
		return s
	}
	return string([]rune(s)[:MaxLength])
}

func redact(s string) string {
	for range maxPasses {
		next := applyRules(s)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

func applyRules(s string) string {
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}
