package project

import "strings"

// Stage identifies one discrete step of the conversion pipeline.
type Stage string

const (
	StageUpload         Stage = "upload"
	StageParsing        Stage = "parsing"
	StageScripting      Stage = "scripting"
	StageVoiceSynthesis Stage = "voice-synthesis"
	StageRendering      Stage = "rendering"
	StageCompleted      Stage = "completed"
)

var allStages = []Stage{
	StageUpload,
	StageParsing,
	StageScripting,
	StageVoiceSynthesis,
	StageRendering,
	StageCompleted,
}

// WorkStages are the stages that issue backend calls and record stage results.
var WorkStages = []Stage{
	StageParsing,
	StageScripting,
	StageVoiceSynthesis,
	StageRendering,
}

var stageSet = func() map[Stage]struct{} {
	set := make(map[Stage]struct{}, len(allStages))
	for _, stage := range allStages {
		set[stage] = struct{}{}
	}
	return set
}()

// stageProgress is the sole source of coarse display progress. Fine-grained
// progress during parsing interpolates between 15 and 35 from the upload
// percentage; see ParsingProgress.
var stageProgress = map[Stage]int{
	StageUpload:         0,
	StageParsing:        15,
	StageScripting:      35,
	StageVoiceSynthesis: 60,
	StageRendering:      85,
	StageCompleted:      100,
}

var stageLabels = map[Stage]string{
	StageUpload:         "File upload",
	StageParsing:        "Deck analysis",
	StageScripting:      "Script generation",
	StageVoiceSynthesis: "Voice synthesis",
	StageRendering:      "Video rendering",
	StageCompleted:      "Completed",
}

// AllStages returns the ordered list of known stages.
func AllStages() []Stage {
	cp := make([]Stage, len(allStages))
	copy(cp, allStages)
	return cp
}

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	normalized := Stage(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stageSet[normalized]
	return normalized, ok
}

// Progress returns the display progress percentage associated with the stage.
func (s Stage) Progress() int {
	return stageProgress[s]
}

// Label returns the user-facing name for the stage.
func (s Stage) Label() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return string(s)
}

// Next returns the stage that follows s in the pipeline order. The final
// stage returns itself.
func (s Stage) Next() Stage {
	for i, stage := range allStages {
		if stage == s && i+1 < len(allStages) {
			return allStages[i+1]
		}
	}
	return s
}

// IsProcessing reports whether the stage represents in-flight pipeline work.
func (s Stage) IsProcessing() bool {
	switch s {
	case StageParsing, StageScripting, StageVoiceSynthesis, StageRendering:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the conversion has left the pipeline.
func (s Stage) IsTerminal() bool {
	return s == StageUpload || s == StageCompleted
}

// ParsingProgress maps an upload percentage onto the parsing stage's display
// progress band, clamped to the scripting threshold.
func ParsingProgress(uploadPct int) int {
	mapped := stageProgress[StageParsing] + int(float64(uploadPct)*0.2+0.5)
	if limit := stageProgress[StageScripting]; mapped > limit {
		return limit
	}
	return mapped
}
