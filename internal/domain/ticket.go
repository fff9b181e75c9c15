package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultTicketPrefix = "YF26"

	ticketSequenceWidth = 5
)

var ErrMalformedTicketID = errors.New("malformed ticket id")

// FormatTicketID renders seq as "<prefix>-NNNNN". Sequences wider than five
// digits are printed in full rather than truncated.
func FormatTicketID(prefix string, seq uint64) string {
	return fmt.Sprintf("%s-%0*d", prefix, ticketSequenceWidth, seq)
}

func ParseTicketID(prefix, ticketID string) (uint64, error) {
	digits, ok := strings.CutPrefix(ticketID, prefix+"-")
	if !ok || len(digits) < ticketSequenceWidth {
		return 0, ErrMalformedTicketID
	}

	seq, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || seq == 0 {
		return 0, ErrMalformedTicketID
	}

	if FormatTicketID(prefix, seq) != ticketID {
		return 0, ErrMalformedTicketID
	}

	return seq, nil
}
