package session

import "github.com/vtcode/vtcode/pkg/providers"

// EstimateTokens applies the byte-length/4 heuristic (minimum 1) uniformly
// used across the agent core for token accounting outside the provider's own
// usage report.
func EstimateTokens(s string) int {
	n := len(s) / 4
	if n < 1 {
		return 1
	}
	return n
}

// TotalTokens estimates the message log's total token footprint by summing
// EstimateTokens over each message's text content. It is an approximation
// used only to decide when trimming is due; actual usage comes from the
// provider's Usage block recorded in Stats.
func (s *State) TotalTokens() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, m := range s.messages {
		total += EstimateTokens(m.Text)
	}
	return total
}

// TrimBefore drops messages[0:index) and prepends summary as a System
// message, used after FindSafeSplitPoint resolves a safe boundary. It is a
// no-op if index <= 0.
func (s *State) TrimBefore(index int, summary string) {
	if index <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index > len(s.messages) {
		index = len(s.messages)
	}
	kept := make([]providers.Message, 0, len(s.messages)-index+1)
	kept = append(kept, providers.Message{Role: providers.RoleSystem, Text: summary})
	kept = append(kept, s.messages[index:]...)
	s.messages = kept
	if s.LastProcessedIndex >= index {
		s.LastProcessedIndex = s.LastProcessedIndex - index + 1
	} else {
		s.LastProcessedIndex = 0
	}
}
