package marc

import (
	"fmt"
)

// Leader holds the 24 byte record leader. Raw is kept verbatim so the leader
// can be written back out unchanged; the remaining fields are the decoded
// byte positions.
type Leader struct {
	Raw                [leaderLen]byte
	Length             int     // 00-04
	Status             byte    // 05
	Type               byte    // 06
	BibLevel           byte    // 07
	Control            byte    // 08
	CharCoding         byte    // 09
	IndicatorCount     int     // 10
	SubfieldCodeLength int     // 11
	BaseAddress        int     // 12-16
	EncodingLevel      byte    // 17
	Form               byte    // 18
	Multipart          byte    // 19
	EntryMap           [4]byte // 20-23
}

// ParseLeader decodes the first 24 bytes of b.
func ParseLeader(b []byte) (Leader, error) {
	var l Leader
	if len(b) < leaderLen {
		return l, &LeaderError{Message: fmt.Sprintf("need %d bytes, have %d", leaderLen, len(b))}
	}
	copy(l.Raw[:], b[:leaderLen])

	var err error
	if l.Length, err = parseDigits(b[0:5]); err != nil {
		return l, &LeaderError{Message: "record length: " + err.Error()}
	}
	if l.BaseAddress, err = parseDigits(b[12:17]); err != nil {
		return l, &LeaderError{Message: "base address: " + err.Error()}
	}
	l.Status = b[5]
	l.Type = b[6]
	l.BibLevel = b[7]
	l.Control = b[8]
	l.CharCoding = b[9]
	l.IndicatorCount = digitOr(b[10], 2)
	l.SubfieldCodeLength = digitOr(b[11], 2)
	l.EncodingLevel = b[17]
	l.Form = b[18]
	l.Multipart = b[19]
	copy(l.EntryMap[:], b[20:24])
	return l, nil
}

// String returns the raw leader.
func (l Leader) String() string {
	return string(l.Raw[:])
}

// parseDigits reads an unsigned decimal number. Unlike strconv.Atoi it
// rejects signs and spaces, which ISO 2709 does not allow.
func parseDigits(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, fmt.Errorf("empty number")
	}
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-digit %q in %q", c, b)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

func digitOr(c byte, def int) int {
	if c < '0' || c > '9' {
		return def
	}
	return int(c - '0')
}
