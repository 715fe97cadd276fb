// Package compliance recognises the carrier keywords that must never be
// treated as booking requests.
package compliance

import (
	"regexp"
	"strings"
)

// Keyword classifies an inbound message.
type Keyword string

const (
	KeywordNone  Keyword = ""
	KeywordStop  Keyword = "stop"
	KeywordStart Keyword = "start"
	KeywordHelp  Keyword = "help"
)

// Detector matches messages that consist of a single carrier keyword, so
// "cancel" alone opts out but "cancel my 8pm table" does not.
type Detector struct {
	stopRegex  *regexp.Regexp
	startRegex *regexp.Regexp
	helpRegex  *regexp.Regexp
}

func NewDetector() *Detector {
	return &Detector{
		stopRegex:  regexp.MustCompile(`(?i)^(?:please\s+)?(stop|stopall|unsubscribe|cancel|end|quit)[.!]*$`),
		startRegex: regexp.MustCompile(`(?i)^(start|unstop|yes)[.!]*$`),
		helpRegex:  regexp.MustCompile(`(?i)^(?:please\s+)?(help|info)[.!?]*$`),
	}
}

// Classify returns the keyword the message is, if any.
func (d *Detector) Classify(body string) Keyword {
	switch {
	case d.IsStop(body):
		return KeywordStop
	case d.IsHelp(body):
		return KeywordHelp
	case d.IsStart(body):
		return KeywordStart
	default:
		return KeywordNone
	}
}

func (d *Detector) IsStop(body string) bool {
	return d.match(d.stopRegex, body)
}

func (d *Detector) IsStart(body string) bool {
	return d.match(d.startRegex, body)
}

func (d *Detector) IsHelp(body string) bool {
	return d.match(d.helpRegex, body)
}

func (d *Detector) match(re *regexp.Regexp, body string) bool {
	if d == nil || re == nil {
		return false
	}
	return re.MatchString(strings.TrimSpace(body))
}
