package main

import "testing"

func TestDemoCommandHasAllSixScenarios(t *testing.T) {
	cmd := newDemoCommand()
	want := []string{"s1", "s2", "s3", "s4", "s5", "s6"}
	for _, use := range want {
		sub, _, err := cmd.Find([]string{use})
		if err != nil || sub == cmd {
			t.Fatalf("demo command has no subcommand %q", use)
		}
	}
}

func TestDemoScenariosRunCleanly(t *testing.T) {
	scenarios := map[string]func() error{
		"s1": demoS1,
		"s2": demoS2,
		"s3": demoS3,
		"s4": demoS4,
		"s5": demoS5,
		"s6": demoS6,
	}
	for name, run := range scenarios {
		t.Run(name, func(t *testing.T) {
			if err := run(); err != nil {
				t.Fatalf("%s: %v", name, err)
			}
		})
	}
}
