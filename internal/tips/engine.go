package tips

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/yaseenp24/workout-buddy/internal/telemetry/tracing"
)

const maxTips = 5

// Profile is the onboarding answer set the tips are derived from.
type Profile struct {
	Goals           []string `json:"goals"`
	Schedule        string   `json:"schedule"`
	Equipment       []string `json:"equipment"`
	ExperienceLevel string   `json:"experience_level"`
}

const (
	SourceModel = "model"
	SourceRules = "rules"
)

// Result carries the tips plus which path produced them. FallbackReason is
// set only when the model path was attempted and abandoned.
type Result struct {
	Tips           []string
	Source         string
	FallbackReason string
}

type tipsGenerator interface {
	GenerateTips(ctx context.Context, profile Profile) ([]string, error)
}

// Engine maps a profile to an ordered list of up to 5 tips. The generative
// model is a pure enhancement: every failure path lands on the deterministic
// rule table, so ComputeTips never errors.
type Engine struct {
	generator tipsGenerator
}

// NewEngine builds an engine. A nil generator means no model credential is
// configured and only the rule table is used.
func NewEngine(generator tipsGenerator) *Engine {
	return &Engine{
		generator: generator,
	}
}

func (e *Engine) ComputeTips(ctx context.Context, profile Profile) Result {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tips.compute")
	defer span.End()

	if e.generator == nil {
		return Result{
			Tips:   LocalTips(profile),
			Source: SourceRules,
		}
	}

	generated, err := e.generator.GenerateTips(ctx, profile)
	if err != nil {
		log.Warnf("tips model call failed, using rule table: %s", err)
		return Result{
			Tips:           LocalTips(profile),
			Source:         SourceRules,
			FallbackReason: err.Error(),
		}
	}
	if len(generated) == 0 {
		log.Warnf("tips model returned nothing usable, using rule table")
		return Result{
			Tips:           LocalTips(profile),
			Source:         SourceRules,
			FallbackReason: "empty model response",
		}
	}

	if len(generated) > maxTips {
		generated = generated[:maxTips]
	}
	return Result{
		Tips:   generated,
		Source: SourceModel,
	}
}

var defaultTips = []string{
	"Aim for 8–12 hard sets per muscle per week and log all sessions.",
	"Warm up with lighter sets, then keep working sets within 2–3 reps of failure.",
	"Progress either weight or reps each week on your main lifts.",
	"Sleep 7–9 hours and keep protein ~1.6–2.2 g/kg bodyweight.",
	"Deload 1 week every 6–8 weeks or when fatigue accumulates.",
}

// LocalTips evaluates the fixed rule table against the profile. Rules fire
// in this order, each at most once; when none match, the default set is
// returned verbatim. The result never exceeds 5 tips.
func LocalTips(profile Profile) []string {
	var tips []string

	goals := lowerSet(profile.Goals)
	equipment := lowerSet(profile.Equipment)
	schedule := strings.ToLower(profile.Schedule)
	experience := strings.ToLower(profile.ExperienceLevel)

	if goals["muscle_gain"] || goals["strength"] {
		tips = append(tips, "Prioritize compound lifts and add small weekly load or rep increases.")
	}
	if goals["weight_loss"] {
		tips = append(tips, "Keep rests short and add brisk walks on non-training days to raise weekly activity.")
	}
	if goals["endurance"] {
		tips = append(tips, "Include 1–2 zone-2 cardio sessions weekly alongside resistance training.")
	}
	if equipment["cable_machine"] {
		tips = append(tips, "Use cable moves to keep tension constant for accessories like rows and face pulls.")
	}
	if equipment["bodyweight_only"] && len(equipment) == 1 {
		tips = append(tips, "Use slow eccentrics and pause reps to make bodyweight sessions more effective.")
	}
	if strings.Contains(schedule, "3-4") {
		tips = append(tips, "Run a simple upper/lower split across two alternating days each week.")
	}
	if experience == "beginner" || experience == "0-1 years" {
		tips = append(tips, "Repeat the same key lifts to build skill; keep RPE ~7–8 and track every session.")
	}

	if len(tips) == 0 {
		tips = make([]string, len(defaultTips))
		copy(tips, defaultTips)
	}
	if len(tips) > maxTips {
		tips = tips[:maxTips]
	}
	return tips
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}
