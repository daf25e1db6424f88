package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

var projectExtensions = []string{".yaml", ".yml"}

// IsProjectFile reports whether the file name looks like a project file.
func IsProjectFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range projectExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FindLatestProject returns the most recently modified project file in dir.
func FindLatestProject(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !IsProjectFile(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if latestFile == "" || info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no project files found in %s", dir)
	}

	return latestFile, nil
}

// Stats is a snapshot of machine and process resource usage.
type Stats struct {
	CPUs         int
	MemTotal     uint64
	MemAvailable uint64
	MemUsedPct   float64
	ProcessRSS   uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("cpus=%d mem=%s/%s (%.1f%% used) rss=%s",
		s.CPUs, formatBytes(s.MemTotal-s.MemAvailable), formatBytes(s.MemTotal), s.MemUsedPct, formatBytes(s.ProcessRSS))
}

// ReadStats samples resource usage. Fields that cannot be read stay zero.
func ReadStats() (Stats, error) {
	var st Stats
	var errs []string

	if n, err := cpu.Counts(true); err == nil {
		st.CPUs = n
	} else {
		errs = append(errs, "cpu: "+err.Error())
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		st.MemTotal, st.MemAvailable, st.MemUsedPct = vm.Total, vm.Available, vm.UsedPercent
	} else {
		errs = append(errs, "mem: "+err.Error())
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			st.ProcessRSS = mi.RSS
		} else {
			errs = append(errs, "rss: "+err.Error())
		}
	} else {
		errs = append(errs, "process: "+err.Error())
	}

	if len(errs) > 0 {
		return st, fmt.Errorf("read stats: %s", strings.Join(errs, "; "))
	}
	return st, nil
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
