package email

import (
	"fmt"
	"regexp"
	"strconv"
)

// Outbound thread replies carry a [#THREAD-<id>] tag in the subject so
// that the inbound webhook can route customer answers back to the right
// conversation.

var threadTagRe = regexp.MustCompile(`\[#THREAD-(\d+)\]`)

func ThreadTag(threadID int) string {
	return fmt.Sprintf("[#THREAD-%d]", threadID)
}

// ParseThreadTag extracts the thread id from an email subject. Returns
// false when no tag is present.
func ParseThreadTag(subject string) (int, bool) {
	m := threadTagRe.FindStringSubmatch(subject)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}
