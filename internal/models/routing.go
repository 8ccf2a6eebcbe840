package models

// Pipeline stages a routing decision can point at.
const (
	StageCannedResponse       = "canned_response"
	StageFollowUpAgent        = "follow_up_agent"
	StageDynamicVoiceResponse = "dynamic_voice_response"
)

// RoutingDecision is the pure output of the intent×outcome routing table:
// which pipeline stage renders the response and with which template.
// TemplatePurpose is documentation for table maintainers, never matched on.
type RoutingDecision struct {
	NextStage       string                 `json:"next_stage"`
	TemplatePurpose string                 `json:"template_purpose"`
	TemplateKey     string                 `json:"template_key"`
	Args            map[string]interface{} `json:"args"`
}
