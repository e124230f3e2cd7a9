package ai_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeon/internal/game/ai"
	"github.com/cory-johannsen/dungeon/internal/game/entity"
)

func minimalDomain() *ai.Domain {
	return &ai.Domain{
		ID:        "test",
		Tasks:     []*ai.Task{{ID: ai.RootTask}},
		Methods:   []*ai.Method{{TaskID: ai.RootTask, ID: "m1", Subtasks: []string{"op1"}}},
		Operators: []*ai.Operator{{ID: "op1", Action: entity.IntentAttack, Target: "player"}},
	}
}

func TestDomain_Validate(t *testing.T) {
	require.NoError(t, minimalDomain().Validate())
	require.NoError(t, ai.DefaultDomain().Validate())
	assert.Error(t, (&ai.Domain{}).Validate(), "empty id")

	cases := map[string]func(*ai.Domain){
		"no tasks":          func(d *ai.Domain) { d.Tasks = nil },
		"duplicate task":    func(d *ai.Domain) { d.Tasks = append(d.Tasks, &ai.Task{ID: ai.RootTask}) },
		"unknown action":    func(d *ai.Domain) { d.Operators[0].Action = "dance" },
		"unknown target":    func(d *ai.Domain) { d.Operators[0].Target = "everyone" },
		"unknown condition": func(d *ai.Domain) { d.Methods[0].Condition = "sleepy" },
		"unknown chance":    func(d *ai.Domain) { d.Methods[0].Chance = "luck" },
		"unknown task":      func(d *ai.Domain) { d.Methods[0].TaskID = "dream" },
		"dangling subtask":  func(d *ai.Domain) { d.Methods[0].Subtasks = []string{"nowhere"} },
		"no subtasks":       func(d *ai.Domain) { d.Methods[0].Subtasks = nil },
		"duplicate method": func(d *ai.Domain) {
			d.Methods = append(d.Methods, &ai.Method{TaskID: ai.RootTask, ID: "m1", Subtasks: []string{"op1"}})
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := minimalDomain()
			mutate(d)
			assert.Error(t, d.Validate())
		})
	}
}

func TestDomain_Validate_ReportsEveryViolation(t *testing.T) {
	d := minimalDomain()
	d.Operators[0].Action = "dance"
	d.Methods[0].Condition = "sleepy"
	err := d.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown action "dance"`)
	assert.Contains(t, err.Error(), `unknown condition "sleepy"`)
}

func TestDomain_MethodsForTask_ReturnsOrdered(t *testing.T) {
	d := &ai.Domain{
		Methods: []*ai.Method{
			{TaskID: "fight", ID: "m1", Subtasks: []string{"op1"}},
			{TaskID: "fight", ID: "m2", Subtasks: []string{"op2"}},
			{TaskID: "other", ID: "m3", Subtasks: []string{"op3"}},
		},
	}
	methods := d.MethodsForTask("fight")
	require.Len(t, methods, 2)
	assert.Equal(t, "m1", methods[0].ID)
	assert.Equal(t, "m2", methods[1].ID)
}

func TestLoadDomains(t *testing.T) {
	dir := t.TempDir()
	body := `domain:
  id: brute
  tasks:
    - id: behave
  methods:
    - {task: behave, id: smash, chance: aggressiveness, subtasks: [strike]}
    - {task: behave, id: hold, subtasks: [guard]}
  operators:
    - {id: strike, action: attack, target: player}
    - {id: guard, action: block, target: self}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brute.yaml"), []byte(body), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	domains, err := ai.LoadDomains(dir)
	require.NoError(t, err)
	require.Len(t, domains, 1)
	assert.Equal(t, "brute", domains[0].ID)
}

func TestLoadDomains_Errors(t *testing.T) {
	_, err := ai.LoadDomains(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	for name, body := range map[string]string{
		"unknown key": "domain:\n  id: x\n  mood: grumpy\n",
		"no domain":   "tasks: []\n",
		"invalid":     "domain:\n  id: x\n",
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "d.yaml"), []byte(body), 0o600))
			_, err := ai.LoadDomains(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoadDomains_ShippedContent(t *testing.T) {
	domains, err := ai.LoadDomains("../../../content/ai")
	require.NoError(t, err)
	assert.NotEmpty(t, domains)
}

func TestProperty_Domain_OperatorByID_ConsistentLookup(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(rt, "n")
		ops := make([]*ai.Operator, n)
		for i := range ops {
			ops[i] = &ai.Operator{ID: fmt.Sprintf("op%d", i), Action: entity.IntentAttack}
		}
		d := &ai.Domain{Operators: ops}

		for _, want := range ops {
			op, ok := d.OperatorByID(want.ID)
			if !ok || op != want {
				rt.Fatalf("OperatorByID(%q) = %v, %v", want.ID, op, ok)
			}
		}
		unknown := rapid.StringMatching(`[a-z_]{1,10}`).Draw(rt, "unknown")
		if _, ok := d.OperatorByID(unknown); ok {
			rt.Fatalf("OperatorByID(%q) found an operator that was never declared", unknown)
		}
	})
}
