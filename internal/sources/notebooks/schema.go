package notebooks

// File is the top-level structure of the notebooks seed file:
//
//	notebooks:
//	  - id: research
//	    name: Research
//	    description: Papers and articles
type File struct {
	Notebooks []Entry `yaml:"notebooks"`
}

// Entry describes one notebook to create at startup.
type Entry struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}
