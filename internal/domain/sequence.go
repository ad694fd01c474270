package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// CasePrefix builds the identifier prefix for a project/nature pair:
// the project followed by the first two characters of the nature code.
func CasePrefix(project string, nature Nature) string {
	n := string(nature)
	if len(n) > 2 {
		n = n[:2]
	}
	return project + "_" + n
}

// CaseSequence hands out case identifiers from monotonic per-prefix
// counters. The counters live for one store instance and are never
// persisted; Seed protects restored snapshots from collisions within
// the process.
type CaseSequence struct {
	counters map[string]int
}

func NewCaseSequence() *CaseSequence {
	return &CaseSequence{counters: make(map[string]int)}
}

// Next generates the next identifier for the given project and nature.
// Returns ok=false without consuming a number when either part is empty.
func (s *CaseSequence) Next(project string, nature Nature) (string, bool) {
	project = strings.TrimSpace(project)
	if project == "" || nature == NatureNone {
		return "", false
	}
	prefix := CasePrefix(project, nature)
	count := s.counters[prefix]
	if count == 0 {
		count = 1
	}
	s.counters[prefix] = count + 1
	return fmt.Sprintf("%s_%03d", prefix, count), true
}

// Seed advances the counter for caseID's prefix past its sequence number,
// so identifiers generated after a snapshot restore never repeat a loaded
// one. Identifiers that do not end in "_<number>" are ignored.
func (s *CaseSequence) Seed(caseID string) {
	i := strings.LastIndex(caseID, "_")
	if i < 0 {
		return
	}
	n, err := strconv.Atoi(caseID[i+1:])
	if err != nil || n < 1 {
		return
	}
	prefix := caseID[:i]
	if s.counters[prefix] <= n {
		s.counters[prefix] = n + 1
	}
}
