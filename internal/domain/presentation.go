package domain

// StatusPresentation carries display metadata for a pipeline stage.
type StatusPresentation struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Label string `json:"label"`
	Name  string `json:"name"`
}

// PriorityPresentation carries display metadata for a priority level.
type PriorityPresentation struct {
	Icon            string `json:"icon"`
	Color           string `json:"color"`
	BackgroundColor string `json:"background_color"`
}

var statusPresentations = map[string]StatusPresentation{
	DeptDesign:    {Icon: "pencil", Color: "bg-blue-500", Label: "Design & Customer Service"},
	DeptBilling:   {Icon: "banknote", Color: "bg-red-500", Label: "Billing"},
	DeptPrinting:  {Icon: "printer", Color: "bg-yellow-500", Label: "Printing"},
	DeptFinishing: {Icon: "scissors", Color: "bg-purple-500", Label: "Finishing"},
	DeptReady:     {Icon: "package-check", Color: "bg-cyan-500", Label: "Ready for Delivery"},
	DeptDelivered: {Icon: "truck", Color: "bg-green-500", Label: "Delivered"},
}

var priorityPresentations = map[JobPriority]PriorityPresentation{
	PriorityUrgent: {Icon: "shield-alert", Color: "text-red-400", BackgroundColor: "bg-red-900/30"},
	PriorityHigh:   {Icon: "chevrons-up", Color: "text-orange-400", BackgroundColor: "bg-orange-900/30"},
	PriorityNormal: {Icon: "chevron-up", Color: "text-blue-400", BackgroundColor: "bg-blue-900/30"},
	PriorityLow:    {Icon: "minus", Color: "text-gray-400", BackgroundColor: "bg-gray-700/30"},
}

// StatusConfig returns display metadata for a department name. Department
// names are external data, so the function is total: an unrecognized name
// gets a fallback representation whose label echoes the input, and an empty
// name reads as unknown.
func StatusConfig(status string) StatusPresentation {
	if status == "" {
		return StatusPresentation{Icon: "building", Color: "bg-gray-500", Label: "Unknown", Name: "Unknown"}
	}
	if cfg, ok := statusPresentations[status]; ok {
		cfg.Name = status
		return cfg
	}
	return StatusPresentation{Icon: "building", Color: "bg-gray-500", Label: status, Name: status}
}

// PriorityConfig returns display metadata for a priority level. The second
// return value is false only when no priority was supplied.
func PriorityConfig(priority JobPriority) (PriorityPresentation, bool) {
	if priority == "" {
		return PriorityPresentation{}, false
	}
	if cfg, ok := priorityPresentations[priority]; ok {
		return cfg, true
	}
	return PriorityPresentation{Icon: "minus", Color: "text-gray-400", BackgroundColor: "bg-gray-700/30"}, true
}
