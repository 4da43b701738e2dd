// Package trie implements the title autocomplete index.
package trie

import (
	"sort"
	"strings"
)

// node is one character step of a lower-cased word
type node struct {
	children map[rune]*node
	terminal bool
	word     string // original-case word, set on terminal nodes
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Trie is a prefix tree over lower-cased words. Lookups are case-insensitive
// and results carry the casing of the most recent insert. Not safe for
// concurrent use.
type Trie struct {
	root *node
}

// New creates an empty trie
func New() *Trie {
	return &Trie{root: newNode()}
}

// Insert adds word. Empty words are ignored. Inserting a word that differs
// only in case replaces the stored casing.
func (t *Trie) Insert(word string) {
	if word == "" {
		return
	}

	current := t.root
	for _, r := range strings.ToLower(word) {
		child, ok := current.children[r]
		if !ok {
			child = newNode()
			current.children[r] = child
		}
		current = child
	}
	current.terminal = true
	current.word = word
}

// SearchByPrefix returns every stored word starting with prefix. The order
// follows map iteration and is not stable between calls; use
// SearchByPrefixSorted when order matters. An empty prefix matches nothing.
func (t *Trie) SearchByPrefix(prefix string) []string {
	results := []string{}
	if prefix == "" {
		return results
	}

	start := t.find(strings.ToLower(prefix))
	if start == nil {
		return results
	}

	// explicit stack keeps long titles off the call stack
	stack := []*node{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.terminal {
			results = append(results, n.word)
		}
		for _, child := range n.children {
			stack = append(stack, child)
		}
	}
	return results
}

// SearchByPrefixSorted is SearchByPrefix ordered case-insensitively, with
// the original text as tie breaker.
func (t *Trie) SearchByPrefixSorted(prefix string) []string {
	results := t.SearchByPrefix(prefix)
	sort.Slice(results, func(i, j int) bool {
		li, lj := strings.ToLower(results[i]), strings.ToLower(results[j])
		if li != lj {
			return li < lj
		}
		return results[i] < results[j]
	})
	return results
}

// Contains reports whether word was inserted, ignoring case
func (t *Trie) Contains(word string) bool {
	if word == "" {
		return false
	}
	n := t.find(strings.ToLower(word))
	return n != nil && n.terminal
}

// Delete removes word and prunes branches left without words. It returns
// false when word was not present.
func (t *Trie) Delete(word string) bool {
	if word == "" {
		return false
	}
	removed, _ := remove(t.root, []rune(strings.ToLower(word)))
	return removed
}

// remove unmarks the terminal node for key below n. It reports whether a
// word was removed and whether n itself is now dead and can be unlinked.
func remove(n *node, key []rune) (removed bool, prune bool) {
	if len(key) == 0 {
		if !n.terminal {
			return false, false
		}
		n.terminal = false
		n.word = ""
		return true, len(n.children) == 0
	}

	child, ok := n.children[key[0]]
	if !ok {
		return false, false
	}
	removed, pruneChild := remove(child, key[1:])
	if pruneChild {
		delete(n.children, key[0])
	}
	return removed, removed && !n.terminal && len(n.children) == 0
}

// Count returns the number of stored words
func (t *Trie) Count() int {
	count := 0
	stack := []*node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.terminal {
			count++
		}
		for _, child := range n.children {
			stack = append(stack, child)
		}
	}
	return count
}

// Clear drops every word
func (t *Trie) Clear() {
	t.root = newNode()
}

func (t *Trie) find(key string) *node {
	current := t.root
	for _, r := range key {
		next, ok := current.children[r]
		if !ok {
			return nil
		}
		current = next
	}
	return current
}
