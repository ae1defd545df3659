package carepath_test

import (
	"fmt"
	"log"

	"github.com/aretw0/carepath"
	"github.com/aretw0/carepath/pkg/dsl"
)

// ExampleNew builds a small algorithm in memory and walks it to an outcome.
func ExampleNew() {
	b := dsl.New("syncope")
	b.Start("start", "Transient loss of consciousness").Go("ecg", "Assess")
	b.Question("ecg", "Abnormal ECG?").
		Go("admit", "Yes", dsl.WithID("abnormal")).
		Go("discharge", "No", dsl.WithID("normal"))
	b.Outcome("admit", "Admit for monitoring")
	b.Outcome("discharge", "Discharge with follow-up")

	eng, err := carepath.New(b.Definition())
	if err != nil {
		log.Fatal(err)
	}
	ctrl := eng.Controller()

	if err := ctrl.Replay(ctrl.Available()[0].ID, "abnormal"); err != nil {
		log.Fatal(err)
	}

	doc, err := eng.Summary()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Outcome:", doc.Outcome.Label)
	for _, s := range doc.Steps {
		fmt.Printf("%s -> %s\n", s.NodeLabel, s.Choice)
	}
	// Output:
	// Outcome: Admit for monitoring
	// Transient loss of consciousness -> Assess
	// Abnormal ECG? -> Yes
}
