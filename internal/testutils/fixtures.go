package testutils

import (
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/dsl"
	"github.com/aretw0/carepath/pkg/graph"
)

// Hypertension builds a condensed adult hypertension algorithm.
//
//	measure -> classify -> {lifestyle, risk, compelling}
//	risk -> {compelling, recheck}
//	compelling -> {acei, hf, first-line -> two-drugs}
func Hypertension() *dsl.Builder {
	b := dsl.New("hypertension").
		Version("2017.1").
		Guideline("2017 ACC/AHA Guideline for the Prevention, Detection, Evaluation, and Management of High Blood Pressure in Adults").
		FAQ("Why average two readings?", "Single readings overestimate blood pressure.")

	b.Start("measure", "Measure blood pressure").
		Why("Accurate measurement is the basis of every later decision.").
		Go("classify", "BP recorded", dsl.WithID("e-measure"))

	b.Question("classify", "Classify blood pressure").
		Go("lifestyle", "Normal or elevated", dsl.WithID("e-elevated")).
		Go("risk", "Stage 1 (130-139/80-89)", dsl.WithID("e-stage1")).
		Go("compelling", "Stage 2", dsl.WithID("e-stage2"), dsl.WithNote("BP >= 140/90 mmHg on two occasions."))

	b.Decision("risk", "10-year ASCVD risk >= 10%?").
		Go("compelling", "Yes", dsl.WithID("e-risk-high")).
		Go("recheck", "No", dsl.WithID("e-risk-low"))

	b.Decision("compelling", "Compelling indication?").
		Go("acei", "CKD or diabetes", dsl.WithID("e-ckd"), dsl.WithNote("Albuminuria favours RAS blockade.")).
		Go("hf", "Heart failure", dsl.WithID("e-hf")).
		Go("first-line", "None", dsl.WithID("e-none"))

	b.Info("first-line", "First-line agents").
		Detail("Thiazide diuretics, CCBs and ACE inhibitors or ARBs.").
		Go("two-drugs", "Continue", dsl.WithID("e-continue"))

	b.Outcome("lifestyle", "Lifestyle modification, reassess in 3-6 months")
	b.Outcome("recheck", "Lifestyle modification, reassess in 3-6 months (stage 1, low risk)")
	b.Outcome("acei", "Start ACE inhibitor or ARB").
		Why("RAS blockade slows progression of kidney disease.").
		Detail("Titrate to the maximum tolerated dose.").
		KeyPoints("Check potassium and creatinine within 4 weeks", "Target < 130/80 mmHg").
		References("Whelton PK et al. Hypertension. 2018;71:e13-e115")
	b.Outcome("hf", "Guideline-directed therapy for heart failure")
	b.Outcome("two-drugs", "Start two first-line agents of different classes")

	return b
}

// HypertensionGraph returns the loaded Hypertension graph.
func HypertensionGraph() *graph.Graph {
	g, err := Hypertension().Load()
	if err != nil {
		panic(err)
	}
	return g
}

// Cyclic builds a small graph with a reassessment loop and an unreachable island.
//
//	start -> assess -> treat -> reassess -> assess (back edge)
//	reassess -> done
//	orphan -> orphan-end (not reachable from start)
func Cyclic() domain.GraphDefinition {
	b := dsl.New("cyclic")
	b.Start("start", "Start").Go("assess", "Begin")
	b.Question("assess", "Assess").Go("treat", "Abnormal").Go("done", "Normal")
	b.Action("treat", "Treat").Go("reassess", "After 4 weeks")
	b.Question("reassess", "Reassess").Go("assess", "Not at goal").Go("done", "At goal")
	b.Outcome("done", "Done")
	b.Info("orphan", "Orphan").Go("orphan-end", "Continue")
	b.Outcome("orphan-end", "Orphan end")
	return b.Definition()
}
