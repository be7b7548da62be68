package service

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// OrderNumberPattern matches numbers produced by NewOrderNumber.
var OrderNumberPattern = regexp.MustCompile(`^ORD-[0-9A-Z]+-[0-9A-Z]{5}$`)

// NewOrderNumber returns ORD-<base36 unix millis>-<5 random base36 chars>,
// uppercased. Two calls in the same millisecond collide with probability
// 1/36^5; callers detect the clash on insert and draw again.
func NewOrderNumber(now time.Time) string {
	var suffix [5]byte
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return "ORD-" + stamp + "-" + string(suffix[:])
}
