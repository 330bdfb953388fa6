// Package persona assembles the system instruction for each completion
// call from the assistant's profile and the current turn state. The
// injected instructions are encoded as a rule table rather than branching
// prose, so adding a condition means adding a row.
package persona

import (
	"fmt"
	"strings"
)

// Profile describes the assistant persona presented to users.
type Profile struct {
	AssistantName string
	Storefront    string
	Website       string
	HomeCity      string
}

// Default returns the Venmathi persona for the Vaangigo storefront.
func Default() Profile {
	return Profile{
		AssistantName: "Venmathi",
		Storefront:    "Vaangigo",
		Website:       "indicraft.vercel.app",
		HomeCity:      "Chennai",
	}
}

// TurnState carries the per-turn signals the assembler conditions on.
type TurnState struct {
	FirstTurn      bool   // no prior history in the session
	UserName       string // known name, "" if none
	NameJustShared bool   // name captured this turn
	Tanglish       bool   // secondary colloquial register detected
	ContextPrompt  string // retrieved knowledge block, "" if none
}

// rule is one row of the instruction table: when the condition holds for
// the turn, the rendered line is injected into the CONTEXT section.
type rule struct {
	when   func(TurnState) bool
	render func(TurnState) string
}

var contextRules = []rule{
	{
		when: func(s TurnState) bool { return s.FirstTurn },
		render: func(s TurnState) string {
			return "- FIRST message - greet warmly and ask their name!"
		},
	},
	{
		when: func(s TurnState) bool { return s.NameJustShared },
		render: func(s TurnState) string {
			return fmt.Sprintf("- User JUST shared name: %s - Say \"Nice to meet you %s! 😊 How can I help you?\" IMMEDIATELY", s.UserName, s.UserName)
		},
	},
	{
		when: func(s TurnState) bool { return s.UserName != "" && !s.NameJustShared },
		render: func(s TurnState) string {
			return fmt.Sprintf("- User's name: %s - use it naturally, don't ask again", s.UserName)
		},
	},
}

const tanglishStyleRule = "- Tanglish mix (da, bro, macha, super, seri, aama, illa, romba, konjam, enna, sollu, naan, unakku, venum, pa, ma)"

// Assemble produces the system instruction for one completion call.
func Assemble(p Profile, s TurnState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, cheerful shopping assistant at %s (website: %s). Help customers discover handmade Indian crafts.\n",
		p.AssistantName, p.Storefront, p.Website)

	// Retrieved knowledge is advisory background, labeled so the model
	// treats it as reference rather than instruction.
	if s.ContextPrompt != "" {
		fmt.Fprintf(&b, "\nKNOWLEDGE:\n%s", s.ContextPrompt)
	}

	fmt.Fprintf(&b, "\nPERSONALITY: %s, 24, %s. Cheerful, warm, bubbly. Love handmade crafts.\n",
		p.AssistantName, p.HomeCity)

	b.WriteString("\nCONTEXT:\n")
	for _, r := range contextRules {
		if r.when(s) {
			b.WriteString(r.render(s))
			b.WriteString("\n")
		}
	}

	b.WriteString("\nRULES:\n")
	if s.Tanglish {
		b.WriteString(tanglishStyleRule)
		b.WriteString("\n")
	}
	b.WriteString("- Emojis (😊 🎉 ✨ 💕 🌟 👍 😄 🎁) - 2-3 per response\n")
	b.WriteString("- SHORT (2-4 sentences)\n")
	b.WriteString("- \"rate sollu\" = tell PRICE, not how to rate\n")
	b.WriteString("- When suggesting products, ALWAYS mention price and rating\n")
	b.WriteString("- Website only when needed\n")

	b.WriteString("\nEXAMPLES:\n")
	switch {
	case s.FirstTurn && s.Tanglish:
		fmt.Fprintf(&b, "- \"Heyy! 👋 Naan %s! Un name enna?\"\n", p.AssistantName)
	case s.FirstTurn:
		fmt.Fprintf(&b, "- \"Hey there! 👋 I'm %s! What's your name?\"\n", p.AssistantName)
	case s.NameJustShared && s.Tanglish:
		fmt.Fprintf(&b, "- \"Nice to meet you %s! 😊 Enna help venum?\"\n", s.UserName)
	case s.NameJustShared:
		fmt.Fprintf(&b, "- \"Nice to meet you %s! 😊 How can I help you?\"\n", s.UserName)
	}
	b.WriteString("- \"Kanchipuram Silk Saree ₹6,800, 4.8 rating! 🎉\"\n")
	b.WriteString("- \"Brass pooja set ₹2,200, nalla reviews! ✨\"")

	return b.String()
}
