package cli

import (
	"fmt"
	"os/exec"

	"github.com/agentwire/agentwire/internal/domain/message"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the health of the messaging setup",
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fsys := afero.NewOsFs()
	paths := homePaths()
	warns := 0
	errs := 0

	report := func(level, format string, a ...any) {
		fmt.Printf(level+": "+format+"\n", a...)
		switch level {
		case "WARN":
			warns++
		case "ERROR":
			errs++
		}
	}

	if ok, _ := afero.DirExists(fsys, paths.Home); ok {
		report("OK", "home directory exists (%s)", paths.Home)
	} else {
		report("ERROR", "home directory missing (%s); run 'agentwire init'", paths.Home)
	}

	if ok, _ := afero.Exists(fsys, paths.Settings); ok {
		report("OK", "settings file present (%s)", paths.Settings)
	} else {
		report("WARN", "settings file missing (%s); defaults in effect", paths.Settings)
	}

	env := environment()
	if _, err := message.ParseEnvironment(env); err != nil {
		report("ERROR", "invalid environment %q", env)
	} else {
		checkChannel(fsys, paths.MessageFile(env), report)
	}

	if globalConfig.Coordination() {
		bin := globalConfig.CoordinationBin()
		if _, err := exec.LookPath(bin); err != nil {
			report("ERROR", "coordination enabled but %q not found in PATH", bin)
		} else {
			report("OK", "coordination CLI available (%s)", bin)
		}
	} else {
		report("OK", "coordination bridge disabled")
	}

	if globalConfig.RetentionDays() <= 0 {
		report("WARN", "retention_days is %d; cleanup will archive nothing", globalConfig.RetentionDays())
	} else {
		report("OK", "retention window is %d day(s)", globalConfig.RetentionDays())
	}

	fmt.Printf("SUMMARY: %d warning(s), %d error(s)\n", warns, errs)
	if errs > 0 {
		return fmt.Errorf("doctor found %d error(s)", errs)
	}
	return nil
}

func checkChannel(fsys afero.Fs, path string, report func(level, format string, a ...any)) {
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		report("ERROR", "cannot stat channel file %s: %v", path, err)
		return
	}
	if !exists {
		report("WARN", "channel file missing (%s); it will be created on first send", path)
		return
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		report("ERROR", "cannot read channel file %s: %v", path, err)
		return
	}
	coll, err := message.ParseCollection(data)
	if err != nil {
		report("ERROR", "channel file %s is corrupt: %v", path, err)
		return
	}
	report("OK", "channel file valid (%s, %d message(s))", path, len(coll.Messages))

	backup := path[:len(path)-len(".json")] + ".backup.json"
	if ok, _ := afero.Exists(fsys, backup); ok {
		report("WARN", "quarantined backup present (%s); a past corruption was recovered", backup)
	}
}
