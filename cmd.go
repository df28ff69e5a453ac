package main

import "time"

// TargetFlags selects the backup root to manage, either from the command line
// or by name from a config file.
type TargetFlags struct {
	Root         string   `help:"backup root directory" short:"r"`
	TypeTag      string   `help:"only manage entries whose name contains this tag" short:"t"`
	Config       string   `help:"config file path, used with --target" short:"c"`
	Target       string   `help:"name of the config target to manage" short:"n"`
	Daily        int      `help:"daily tier capacity" default:"7"`
	Weekly       int      `help:"weekly tier capacity" default:"4"`
	Monthly      int      `help:"monthly tier capacity" default:"12"`
	DailyWindow  int      `help:"maximum age in days of a daily backup" default:"7"`
	WeeklyAnchor string   `help:"weekday a weekly backup must fall on" default:"sunday"`
	Timezone     string   `help:"timezone used for calendar days" default:"UTC"`
	Exclude      []string `help:"glob pattern of entry names never managed" short:"x"`
	UnixSeconds  bool     `help:"read 10-digit numbers in names as unix seconds"`
}

type Command struct {
	LogJSON bool `help:"log JSON lines instead of console output" name:"log-json"`

	Version struct{} `cmd:"" help:"Print version information."`
	Plan    struct {
		TargetFlags `embed:""`
		JSON        bool `help:"print the report as JSON only" name:"json"`
	} `cmd:"" help:"Show which backups would be kept or deleted."`
	Apply struct {
		TargetFlags `embed:""`
		Database    string        `help:"database path for run history" short:"d"`
		Concurrency int           `help:"number of parallel deletions, defaults to the target's setting or 1"`
		Timeout     time.Duration `help:"abort deletions after this duration, e.g. 10m"`
		DryRun      bool          `help:"don't delete any files, just print the output"`
	} `cmd:"" help:"Delete backups that fall outside the retention policy."`
	Daemon struct {
		Config   string `help:"config file path" short:"c" required:""`
		Database string `help:"database path" short:"d" required:""`
		DryRun   bool   `help:"don't delete any files, just print the output"`
	} `cmd:"" help:"Run the retention service."`
	History struct {
		Database string        `help:"database path" short:"d" required:""`
		Target   string        `help:"only show runs of this target" short:"n"`
		Limit    int           `help:"maximum number of runs to show" default:"20"`
		Since    time.Duration `help:"only show runs started within this duration, e.g. 168h"`
		Run      uint          `help:"show the decisions of this run id"`
		JSON     bool          `help:"print JSON instead of a table" name:"json"`
	} `cmd:"" help:"Show recorded retention runs."`
}
