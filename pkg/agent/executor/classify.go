package executor

import (
	"encoding/json"
	"strings"

	"github.com/fpt/notice-cli/pkg/message"
)

// Decision is the classification of one model reply.
type Decision interface {
	decision()
}

// ToolCallRequest asks for a search.
type ToolCallRequest struct {
	CallID string
	Tool   message.ToolName
	Query  string
	Args   message.ToolArgumentValues
}

// FinalAnswer carries the drafted notice.
type FinalAnswer struct {
	Text string
}

// Unparsable is a reply that is neither a usable tool call nor an answer.
type Unparsable struct {
	Raw    string
	Reason string
}

func (ToolCallRequest) decision() {}
func (FinalAnswer) decision()     {}
func (Unparsable) decision()      {}

const functionTagPrefix = "<function="

// Classify maps a model reply to a Decision. A structured tool call wins over
// text; a function call written into the text also counts as a tool call.
// known lists the tools the model may call.
func Classify(resp message.Message, known map[message.ToolName]message.Tool) Decision {
	if resp == nil {
		return Unparsable{Reason: "empty reply"}
	}

	switch r := resp.(type) {
	case *message.ToolCallMessage:
		return classifyCall(r.ID(), r.ToolName(), r.ToolArguments(), r.Content(), known)
	case *message.ToolCallBatchMessage:
		for _, call := range r.Calls() {
			d := classifyCall(call.ID(), call.ToolName(), call.ToolArguments(), call.Content(), known)
			if _, ok := d.(ToolCallRequest); ok {
				return d
			}
		}
		return Unparsable{Raw: r.Content(), Reason: "tool call batch without a usable call"}
	}

	return classifyText(resp.Content(), known)
}

func classifyCall(id string, name message.ToolName, args message.ToolArgumentValues, raw string, known map[message.ToolName]message.Tool) Decision {
	if _, ok := known[name]; !ok {
		return Unparsable{Raw: raw, Reason: "unknown tool " + string(name)}
	}
	query := strings.TrimSpace(args.String("query"))
	if query == "" {
		return Unparsable{Raw: raw, Reason: "tool call without a query"}
	}
	return ToolCallRequest{CallID: id, Tool: name, Query: query, Args: message.ToolArgumentValues{"query": query}}
}

func classifyText(text string, known map[message.ToolName]message.Tool) Decision {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Unparsable{Raw: text, Reason: "empty reply"}
	}

	if idx := strings.Index(trimmed, functionTagPrefix); idx >= 0 {
		name, args, ok := parseFunctionTag(trimmed[idx+len(functionTagPrefix):])
		if !ok {
			return Unparsable{Raw: text, Reason: "malformed function call"}
		}
		return classifyCall("", name, args, text, known)
	}

	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		var call struct {
			Name       string                     `json:"name"`
			Parameters message.ToolArgumentValues `json:"parameters"`
			Arguments  message.ToolArgumentValues `json:"arguments"`
		}
		if err := json.Unmarshal([]byte(trimmed), &call); err != nil || call.Name == "" {
			return Unparsable{Raw: text, Reason: "bare JSON instead of a letter"}
		}
		args := call.Parameters
		if args == nil {
			args = call.Arguments
		}
		return classifyCall("", message.ToolName(call.Name), args, text, known)
	}

	return FinalAnswer{Text: trimmed}
}

// parseFunctionTag reads `NAME>{json}` or `NAME{json}` following "<function=".
func parseFunctionTag(s string) (message.ToolName, message.ToolArgumentValues, bool) {
	end := strings.IndexAny(s, ">{ \n")
	if end <= 0 {
		return "", nil, false
	}
	name := message.ToolName(s[:end])

	brace := strings.Index(s[end:], "{")
	if brace < 0 {
		return "", nil, false
	}
	var args message.ToolArgumentValues
	if err := json.NewDecoder(strings.NewReader(s[end+brace:])).Decode(&args); err != nil {
		return "", nil, false
	}
	return name, args, true
}
