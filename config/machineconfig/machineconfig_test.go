package machineconfig

import (
	"os"
	"testing"

	config "github.com/openi686/i686emu/config/configparser"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "i686emu-*.cfg")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(body); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	return f.Name()
}

func TestDirectivesPopulateState(t *testing.T) {
	Reset()

	path := writeConfig(t, "MEMORY 200000\nLOAD 1000 image.bin\nENTRY 1000\nBREAK 2000\nLOGLEVEL debug\n")
	if err := config.LoadConfigFile(path); err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}

	if MemorySize != 0x200000 {
		t.Errorf("MemorySize = %#x, want 0x200000", MemorySize)
	}
	if len(Loads) != 1 || Loads[0].Addr != 0x1000 || Loads[0].Path != "image.bin" {
		t.Errorf("Loads = %+v, want one image at 0x1000", Loads)
	}
	if !HasEntry || EntryPoint != 0x1000 {
		t.Errorf("EntryPoint = %#x HasEntry=%v, want 0x1000/true", EntryPoint, HasEntry)
	}
	if !HasBreak || BreakAddr != 0x2000 {
		t.Errorf("BreakAddr = %#x HasBreak=%v, want 0x2000/true", BreakAddr, HasBreak)
	}
	if LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", LogLevel)
	}
}

func TestMemoryRejectsZero(t *testing.T) {
	Reset()
	if err := setMemory(0, "", nil); err == nil {
		t.Error("setMemory(0) should fail")
	}
}

func TestLogLevelRejectsUnknown(t *testing.T) {
	Reset()
	if err := setLogLevel(0, "verbose", nil); err == nil {
		t.Error("setLogLevel(\"verbose\") should fail")
	}
}
