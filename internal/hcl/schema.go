package hcl

// --- Settings Schema ---

// settingsRoot decodes every top-level block of a settings file. Unknown
// blocks and attributes are rejected.
type settingsRoot struct {
	Classification *classificationBlock `hcl:"classification,block"`
	Registry       *registryBlock       `hcl:"registry,block"`
	Report         *reportBlock         `hcl:"report,block"`
	Engines        []*engineBlock       `hcl:"engine,block"`
	Post           *postBlock           `hcl:"post,block"`
	Batch          *batchBlock          `hcl:"batch,block"`
	Profiles       []*profileBlock      `hcl:"profile,block"`
}

type classificationBlock struct {
	SetupPrefixes   []string `hcl:"setup_prefixes,optional"`
	ExcludePrefixes []string `hcl:"exclude_prefixes,optional"`
}

type registryBlock struct {
	Path     string `hcl:"path,optional"`
	Encoding string `hcl:"encoding,optional"`
}

type reportBlock struct {
	SortSetups bool   `hcl:"sort_setups,optional"`
	Excluded   string `hcl:"excluded,optional"`
	Indent     string `hcl:"indent,optional"`
	GroupsOnly bool   `hcl:"groups_only,optional"`
	ShowTools  bool   `hcl:"show_tools,optional"`
	SaveDir    string `hcl:"save_dir,optional"`
}

// engineBlock carries the attributes of every engine kind; which ones are
// meaningful depends on the label.
type engineBlock struct {
	Kind               string `hcl:"kind,label"`
	URL                string `hcl:"url,optional"`
	Namespace          string `hcl:"namespace,optional"`
	Timeout            string `hcl:"timeout,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
	Command            string `hcl:"command,optional"`
	Dir                string `hcl:"dir,optional"`
}

type postBlock struct {
	Extension string `hcl:"extension,optional"`
	Units     string `hcl:"units,optional"`
	OutputDir string `hcl:"output_dir,optional"`
}

type batchBlock struct {
	Overwrite string `hcl:"overwrite,optional"`
}

type profileBlock struct {
	Name    string         `hcl:"name,label"`
	Targets []*targetBlock `hcl:"target,block"`
}

type targetBlock struct {
	Postprocessor string `hcl:"postprocessor,label"`
	Extension     string `hcl:"extension"`
}

// --- Session Snapshot Schema ---

type snapshotRoot struct {
	Parts      []*partBlock      `hcl:"part,block"`
	Groups     []*groupBlock     `hcl:"group,block"`
	Operations []*operationBlock `hcl:"operation,block"`
}

type partBlock struct {
	Name     string `hcl:"name,label"`
	CAMSetup *bool  `hcl:"cam_setup,optional"`
	Root     string `hcl:"root,optional"`
}

type groupBlock struct {
	Label   string   `hcl:"label,label"`
	Name    string   `hcl:"name,optional"`
	Members []string `hcl:"members,optional"`
}

type operationBlock struct {
	Label string `hcl:"label,label"`
	Name  string `hcl:"name,optional"`
	Tool  string `hcl:"tool,optional"`
}
