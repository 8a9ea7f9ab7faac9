package chat

// Event names streamed to the client.
const (
	EventStatus           = "status"
	EventFunctionStart    = "function_start"
	EventFunctionComplete = "function_complete"
	EventContent          = "content"
	EventDone             = "done"
	EventError            = "error"
)

// Status describes the current processing stage.
type Status struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// statusFor maps a function name to the stage announcement shown while
// it runs.
func statusFor(name string) Status {
	switch name {
	case "search_knowledge_base":
		return Status{Stage: "searching", Message: "Searching knowledge base..."}
	case "identify_common_misconceptions":
		return Status{Stage: "analyzing", Message: "Analyzing misconceptions..."}
	case "generate_learning_objectives":
		return Status{Stage: "generating", Message: "Generating learning objectives..."}
	case "generate_learning_path":
		return Status{Stage: "generating", Message: "Creating learning path..."}
	case "list_available_topics":
		return Status{Stage: "retrieving", Message: "Listing available topics..."}
	case "save_content":
		return Status{Stage: "saving", Message: "Saving content..."}
	default:
		return Status{Stage: "processing", Message: "Processing..."}
	}
}
