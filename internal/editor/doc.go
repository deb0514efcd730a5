// Package editor wires the draft store to the API for the three authoring
// tools: the question set editor, the vocabulary set editor and the class
// builder. It also holds the optimistic like toggle used on discussion
// posts.
package editor
