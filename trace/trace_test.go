package trace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/coloc-sim/coloc-sim/sim"
)

func writeTempCSV(t *testing.T, rows []string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.csv")
	content := ""
	for _, r := range rows {
		content += r + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing temp trace: %v", err)
	}
	return path
}

func TestLoad_ParsesRequiredFields(t *testing.T) {
	// GIVEN a two-row trace within the configured window
	path := writeTempCSV(t, []string{
		"v1,s1,d,0,10,0,0,0,cat,2,4",
		"v2,s2,d,5,10,0,0,0,cat,2,4",
	})
	cfg := sim.DefaultEngineConfig()
	cfg.MinTime = 0
	cfg.MaxTime = 100

	// WHEN the trace is loaded
	result, err := Load(cfg, path, 1)

	// THEN both VMs and both subscriptions are present
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(result.Creations) != 2 {
		t.Fatalf("expected 2 creations, got %d", len(result.Creations))
	}
	if len(result.Subs) != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", len(result.Subs))
	}
}

func TestLoad_SkipsGreaterThanTokenRows(t *testing.T) {
	// GIVEN a row whose cores field is a ">"-token
	path := writeTempCSV(t, []string{
		"v1,s1,d,0,10,0,0,0,cat,>64,4",
		"v2,s2,d,0,10,0,0,0,cat,2,4",
	})
	cfg := sim.DefaultEngineConfig()
	cfg.MinTime = 0
	cfg.MaxTime = 100

	// WHEN the trace is loaded
	result, err := Load(cfg, path, 1)

	// THEN only the well-formed row survives
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(result.Creations) != 1 {
		t.Fatalf("expected 1 creation, got %d", len(result.Creations))
	}
	if result.Creations[0].ID != "v2" {
		t.Errorf("expected surviving VM v2, got %s", result.Creations[0].ID)
	}
}

func TestLoad_SkipsRowsOutsideWindow(t *testing.T) {
	// GIVEN a row created before min_time and one deleted after max_time
	path := writeTempCSV(t, []string{
		"v1,s1,d,-5,10,0,0,0,cat,2,4",
		"v2,s2,d,0,500,0,0,0,cat,2,4",
		"v3,s3,d,0,10,0,0,0,cat,2,4",
	})
	cfg := sim.DefaultEngineConfig()
	cfg.MinTime = 0
	cfg.MaxTime = 100

	// WHEN the trace is loaded
	result, err := Load(cfg, path, 1)

	// THEN only v3 survives the window filter
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(result.Creations) != 1 || result.Creations[0].ID != "v3" {
		t.Fatalf("expected only v3 to survive, got %d rows", len(result.Creations))
	}
}

func TestLoad_DuplicateVMIDIsFatal(t *testing.T) {
	// GIVEN a trace with a repeated vm_id
	path := writeTempCSV(t, []string{
		"v1,s1,d,0,10,0,0,0,cat,2,4",
		"v1,s2,d,0,10,0,0,0,cat,2,4",
	})
	cfg := sim.DefaultEngineConfig()
	cfg.MinTime = 0
	cfg.MaxTime = 100

	// WHEN the trace is loaded
	_, err := Load(cfg, path, 1)

	// THEN loading fails
	if err == nil {
		t.Fatal("expected duplicate vm_id to be fatal")
	}
}

func TestLoad_ParsesOptionalTargetVMID(t *testing.T) {
	// GIVEN a row carrying the optional 12th target_vm_id field
	path := writeTempCSV(t, []string{
		"v1,s1,d,0,10,0,0,0,cat,2,4",
		"v2,s2,d,1,10,0,0,0,cat,2,4,v1",
	})
	cfg := sim.DefaultEngineConfig()
	cfg.MinTime = 0
	cfg.MaxTime = 100

	// WHEN the trace is loaded
	result, err := Load(cfg, path, 1)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	// THEN the attacker VM carries the declared target
	var attacker *sim.VM
	for _, vm := range result.Creations {
		if vm.ID == "v2" {
			attacker = vm
		}
	}
	if attacker == nil {
		t.Fatal("expected to find v2")
	}
	if attacker.TargetVMID != "v1" {
		t.Errorf("expected target_vm_id v1, got %q", attacker.TargetVMID)
	}
}

func TestLoad_MaliciousSubscriptionFilesForceMalicious(t *testing.T) {
	// GIVEN a main trace and a separate malicious-subscription file
	mainPath := writeTempCSV(t, []string{
		"v1,s1,d,0,10,0,0,0,cat,2,4",
	})
	malPath := writeTempCSV(t, []string{
		"v2,s2,d,0,10,0,0,0,cat,2,4",
	})
	cfg := sim.DefaultEngineConfig()
	cfg.MinTime = 0
	cfg.MaxTime = 100
	cfg.MaliciousSubscriptionFiles = []string{malPath}
	cfg.MaliciousProportions = []float64{0.0}

	// WHEN the trace is loaded with a zero proportion (nothing would be
	// malicious by chance)
	result, err := Load(cfg, mainPath, 1)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	// THEN s2 is still forced malicious despite the zero proportion
	if !result.Subs["s2"].Malicious[0] {
		t.Error("expected s2 to be forced malicious")
	}
	if result.Subs["s1"].Malicious[0] {
		t.Error("expected s1 to remain benign")
	}
}

func TestLoad_ReplaceMaliciousSubscriptionIDRewritesForcedVMs(t *testing.T) {
	// GIVEN a malicious-subscription file and a replacement ID
	mainPath := writeTempCSV(t, []string{
		"v1,s1,d,0,10,0,0,0,cat,2,4",
	})
	malPath := writeTempCSV(t, []string{
		"v2,s2,d,0,10,0,0,0,cat,2,4",
	})
	cfg := sim.DefaultEngineConfig()
	cfg.MinTime = 0
	cfg.MaxTime = 100
	cfg.MaliciousSubscriptionFiles = []string{malPath}
	cfg.MaliciousProportions = []float64{0.0}
	cfg.ReplaceMaliciousSubscriptionID = "attacker"

	// WHEN the trace is loaded
	result, err := Load(cfg, mainPath, 1)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	// THEN v2 now belongs to the synthetic subscription
	var v2 *sim.VM
	for _, vm := range result.Creations {
		if vm.ID == "v2" {
			v2 = vm
		}
	}
	if v2 == nil {
		t.Fatal("expected to find v2")
	}
	if v2.Sub.ID != "attacker" {
		t.Errorf("expected v2 rewritten to subscription attacker, got %s", v2.Sub.ID)
	}
	if !v2.Sub.Malicious[0] {
		t.Error("expected synthetic subscription to be malicious")
	}
}
