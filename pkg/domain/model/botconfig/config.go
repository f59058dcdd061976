package botconfig

import (
	_ "embed"
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mindwell-lab/serene/pkg/domain/model/errs"
	"github.com/mindwell-lab/serene/pkg/domain/types"
)

//go:embed default.json
var defaultRaw []byte

// Config is the conversation configuration loaded once at startup and
// treated as read-only afterwards.
type Config struct {
	Intro          Intro                        `json:"intro"`
	MoodSelection  MoodSelection                `json:"moodSelection"`
	Questionnaires map[types.Tool]Questionnaire `json:"questionnaires"`
	AnswerMapping  AnswerMapping                `json:"answerMapping"`
	Crisis         Crisis                       `json:"crisis"`
	Results        map[string]ResultBand        `json:"results"`
}

type Intro struct {
	Welcome       string   `json:"welcome"`
	YesKeywords   []string `json:"yesKeywords"`
	NoKeywords    []string `json:"noKeywords"`
	ExitResponse  string   `json:"exitResponse"`
	ClarifyPrompt string   `json:"clarifyPrompt"`
}

type MoodSelection struct {
	Prompt        string                  `json:"prompt"`
	Routing       map[types.Tool][]string `json:"routing"`
	ClarifyPrompt string                  `json:"clarifyPrompt"`
}

type Questionnaire struct {
	Questions []string `json:"questions"`
	// Thresholds is ordered; the first band whose inclusive range contains
	// the total score wins.
	Thresholds []Threshold `json:"thresholds"`
	// CrisisQuestionIndex is the 0-based index of a direct self-harm
	// ideation item, if the tool has one.
	CrisisQuestionIndex *int `json:"crisisQuestionIndex,omitempty"`
}

type Threshold struct {
	Name  string `json:"name"`
	Range [2]int `json:"range"`
}

type AnswerMapping struct {
	StandardScale Scale  `json:"standardScale"`
	GHQScale      Scale  `json:"ghqScale"`
	ClarifyPrompt string `json:"clarifyPrompt"`
}

// Scale maps a score level (as a decimal string, matching the JSON shape) to
// the keywords that indicate it.
type Scale map[string][]string

type Crisis struct {
	Keywords []string `json:"keywords"`
	Response string   `json:"response"`
}

type ResultBand struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// Default returns the embedded configuration
func Default() *Config {
	var cfg Config
	if err := json.Unmarshal(defaultRaw, &cfg); err != nil {
		// The embedded config is part of the binary; failing to parse it is
		// a build defect.
		panic("broken embedded bot config: " + err.Error())
	}
	return &cfg
}

// Load reads a configuration file. The file replaces the embedded default
// wholesale.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read bot config", goerr.V("path", path))
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse bot config",
			goerr.T(errs.TagValidation), goerr.V("path", path))
	}
	return &cfg, nil
}

// MapResponse resolves a free-text reply to a score. Higher levels are
// checked first so a reply matching several levels resolves to the highest.
// Returns -1 when no keyword matches ("unclear", caller reprompts).
func (x Scale) MapResponse(text string) int {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return -1
	}

	levels := make([]int, 0, len(x))
	for k := range x {
		n, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		levels = append(levels, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))

	for _, level := range levels {
		for _, keyword := range x[strconv.Itoa(level)] {
			if keyword != "" && strings.Contains(normalized, strings.ToLower(keyword)) {
				return level
			}
		}
	}
	return -1
}

// ScaleFor returns the answer scale used by the given tool
func (c *Config) ScaleFor(tool types.Tool) Scale {
	if tool == types.ToolGHQ12 && len(c.AnswerMapping.GHQScale) > 0 {
		return c.AnswerMapping.GHQScale
	}
	return c.AnswerMapping.StandardScale
}

// Questionnaire returns the tool's question list and thresholds
func (c *Config) Questionnaire(tool types.Tool) (Questionnaire, bool) {
	q, ok := c.Questionnaires[tool]
	return q, ok
}

// Gaps lists configuration keys that are absent and will be served by
// fallback defaults. Logged once at startup; never fatal.
func (c *Config) Gaps() []string {
	var gaps []string
	if c.Intro.Welcome == "" {
		gaps = append(gaps, "intro.welcome")
	}
	if len(c.Intro.YesKeywords) == 0 {
		gaps = append(gaps, "intro.yesKeywords")
	}
	if len(c.Intro.NoKeywords) == 0 {
		gaps = append(gaps, "intro.noKeywords")
	}
	if c.MoodSelection.Prompt == "" {
		gaps = append(gaps, "moodSelection.prompt")
	}
	if len(c.MoodSelection.Routing) == 0 {
		gaps = append(gaps, "moodSelection.routing")
	}
	for _, tool := range types.Tools() {
		q, ok := c.Questionnaires[tool]
		if !ok || len(q.Questions) == 0 {
			gaps = append(gaps, "questionnaires."+tool.String()+".questions")
			continue
		}
		if len(q.Thresholds) == 0 {
			gaps = append(gaps, "questionnaires."+tool.String()+".thresholds")
		}
	}
	if len(c.AnswerMapping.StandardScale) == 0 {
		gaps = append(gaps, "answerMapping.standardScale")
	}
	if len(c.Crisis.Keywords) == 0 {
		gaps = append(gaps, "crisis.keywords")
	}
	if c.Crisis.Response == "" {
		gaps = append(gaps, "crisis.response")
	}
	if len(c.Results) == 0 {
		gaps = append(gaps, "results")
	}
	return gaps
}
