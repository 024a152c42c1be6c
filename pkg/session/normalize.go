package session

import "github.com/vtcode/vtcode/pkg/providers"

// callIDIndex maps a tool-call id to the message index of the assistant
// message that emitted it, rebuilt fresh on every normalization rather than
// stored as back-pointers (see spec.md's "Cyclic references" design note).
func callIDIndex(messages []providers.Message) map[string]int {
	idx := make(map[string]int)
	for i, m := range messages {
		if m.Role != providers.RoleAssistant {
			continue
		}
		for _, tc := range m.ToolCalls {
			idx[tc.ID] = i
		}
	}
	return idx
}

// Normalize enforces the tool-call/tool-response pairing invariant. A tool
// response whose call id no earlier assistant message emitted is dropped. An
// assistant message with any call that has no tool response in the log keeps
// its text with its tool-calls removed, or is dropped if it has no text.
// Both rules apply wherever the message sits, not only at the end of the
// log, and unanswered calls at the tail are removed like any others. This
// follows sanitizeToolPairs's all-or-nothing-per-message policy.
func (s *State) Normalize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = normalizeMessages(s.messages)
}

func normalizeMessages(messages []providers.Message) []providers.Message {
	producingIndex := callIDIndex(messages)

	toolResultIDs := make(map[string]struct{})
	for _, m := range messages {
		if m.Role == providers.RoleTool {
			toolResultIDs[m.ToolCallID] = struct{}{}
		}
	}

	out := make([]providers.Message, 0, len(messages))
	for i, m := range messages {
		switch m.Role {
		case providers.RoleTool:
			producerIdx, producerExists := producingIndex[m.ToolCallID]
			if !producerExists || producerIdx >= i {
				continue // orphan tool response: drop
			}
			out = append(out, m)

		case providers.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, m)
				continue
			}
			allAnswered := true
			for _, tc := range m.ToolCalls {
				if _, ok := toolResultIDs[tc.ID]; !ok {
					allAnswered = false
					break
				}
			}
			if allAnswered {
				out = append(out, m)
				continue
			}
			// Unanswered tool-calls: if this message still has text
			// content, keep the text and strip the calls; otherwise drop
			// the message.
			if m.Text != "" {
				m.ToolCalls = nil
				out = append(out, m)
			}

		default:
			out = append(out, m)
		}
	}
	return out
}

// FindSafeSplitPoint returns the largest index <= preferredIndex at which the
// message-log prefix [0, index) is closed under the pairing invariant: no
// message at or after index is a Tool message whose producing assistant
// message lies before index (which would orphan that tool response when the
// prefix is dropped).
//
// Per spec.md's redesign note, the scan also refuses to split between a
// parent assistant tool-call message and only some of its sibling
// responses: if decrementing would separate an assistant message from a
// response it produced, the candidate moves to right before that assistant
// message instead of merely one message earlier.
func (s *State) FindSafeSplitPoint(preferredIndex int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findSafeSplitPoint(s.messages, preferredIndex)
}

func findSafeSplitPoint(messages []providers.Message, preferredIndex int) int {
	if preferredIndex <= 0 {
		return 0
	}
	if preferredIndex > len(messages) {
		preferredIndex = len(messages)
	}
	producingIndex := callIDIndex(messages)

	candidate := preferredIndex
	for candidate > 0 {
		if orphanIndex, ok := firstOrphanAt(messages, producingIndex, candidate); ok {
			// Keep the assistant message and all its tool-call siblings
			// together: move the candidate to right before the assistant
			// message that produced the offending call, not merely one
			// index earlier.
			candidate = orphanIndex
			continue
		}
		return candidate
	}
	return 0
}

// firstOrphanAt reports the producing-assistant index of the first Tool
// message at or after candidate whose producer lies before candidate (i.e.
// would be dropped by a split at candidate while its response survives).
func firstOrphanAt(messages []providers.Message, producingIndex map[string]int, candidate int) (int, bool) {
	for i := candidate; i < len(messages); i++ {
		m := messages[i]
		if m.Role != providers.RoleTool {
			continue
		}
		producerIdx, ok := producingIndex[m.ToolCallID]
		if ok && producerIdx < candidate {
			return producerIdx, true
		}
	}
	return 0, false
}
