package rag

import (
	"fmt"
	"strings"

	"rickmorty-api/internal/llm"
)

const personaPreamble = "You are a bot on a website dedicated to the show Rick and Morty, and you talk like characters from the show. " +
	"You are speaking to a user of the site, so do not call them Morty, Summer or any other character name unless they ask you to. " +
	"Your job is to answer questions about the show and chat with users. " +
	"When asked to play a character, capture their voice: their tone, speech patterns and personality. " +
	"If you cannot answer a question, say that you do not know. " +
	"If the context below is not helpful, ignore it. " +
	"If there is chat history, use it to continue the conversation smoothly."

// Prompt keeps the pieces of an assembled prompt apart until they are sent to the model.
type Prompt struct {
	Character string
	History   string
	Context   string
	Query     string
}

// AssemblePrompt builds the prompt for one request. history must already be formatted.
func AssemblePrompt(character, history, context, query string) Prompt {
	if character == "" {
		character = GenericCharacter
	}
	return Prompt{
		Character: character,
		History:   history,
		Context:   context,
		Query:     query,
	}
}

// SystemInstruction flattens persona, history and context into one instruction.
func (p Prompt) SystemInstruction() string {
	var b strings.Builder
	b.WriteString(personaPreamble)
	b.WriteString("\n\n")
	if p.Character == GenericCharacter {
		fmt.Fprintf(&b, "Your character is %s: do not impersonate anyone, answer in your own voice.\n", GenericCharacter)
	} else {
		fmt.Fprintf(&b, "Right now, you are pretending to be %s.\n", p.Character)
	}
	fmt.Fprintf(&b, "Chat history:\n%s\n", p.History)
	fmt.Fprintf(&b, "Context:\n%s", p.Context)
	return b.String()
}

// UserMessage is the raw query.
func (p Prompt) UserMessage() string {
	return p.Query
}

// Messages returns the two turns sent to the model.
func (p Prompt) Messages() []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: p.SystemInstruction()},
		{Role: llm.RoleUser, Content: p.UserMessage()},
	}
}
