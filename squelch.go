package sir

import "hash/fnv"

// fnv1a64 hashes s with 64-bit FNV-1a, used for the squelch duplicate
// fingerprint of section 3/8.
func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// squelchResult is what checkSquelchLocked tells the dispatcher to do.
type squelchResult struct {
	// drop is true when the message must not be dispatched at all
	// (already squelched, still matching).
	drop bool
	// replacement, if non-empty, replaces the message text with a summary
	// line ("previous message repeated N times").
	replacement string
}

// checkSquelchLocked implements section 4.1 step 8. It must be called with the
// config mutex held only for the brief "commit" re-acquisition described in
// section 5; the caller takes the lock, calls this, and releases it.
func checkSquelchLocked(s *squelchState, level Level, msg string) squelchResult {
	var head [2]byte
	copy(head[:], msg)

	matches := level == s.lastLevel && head == s.lastHead
	if matches {
		h := fnv1a64(msg)
		matches = h == s.lastHash
	}

	if !matches {
		*s = freshSquelch()
		s.lastLevel = level
		s.lastHead = head
		s.lastHash = fnv1a64(msg)
		return squelchResult{}
	}

	// A run of identical messages can trigger more than one summary: each
	// time the (doubled) threshold is reached, another summary fires and
	// the threshold doubles again (section 3 invariants, testable
	// property 6). Between summaries, once the first one has fired for
	// this run, duplicates are dropped outright rather than shown
	// literally ("while squelched and still matching, return false
	// without dispatching" — section 4.1 step 8).
	s.run++
	if s.run >= s.threshold-2 {
		old := s.threshold
		s.threshold *= squelchBackoffFactor
		s.run = 0
		s.squelched = true
		return squelchResult{replacement: summaryMessage(old)}
	}
	if s.squelched {
		return squelchResult{drop: true}
	}
	return squelchResult{}
}

func summaryMessage(n int) string {
	if n == 1 {
		return "previous message repeated 1 time"
	}
	return itoaRepeated(n)
}

func itoaRepeated(n int) string {
	return "previous message repeated " + itoa(n) + " times"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
