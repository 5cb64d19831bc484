package config

import (
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/temoto/cashreg/currency"
	"github.com/temoto/cashreg/helpers"
	"github.com/temoto/cashreg/log2"
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []Source `hcl:"include"`

	Log struct {
		Level string `hcl:"level"`
	} `hcl:"log"`
	// Till is initial register holdings, element name to count.
	// Later sources add to counts of earlier ones.
	Till map[string]int `hcl:"till"`

	till map[string]int
}

type Source struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

func (c *Config) LogLevel() (log2.Level, error) {
	return log2.ParseLevel(c.Log.Level)
}

// Inventory builds initial holdings from Till section.
func (c *Config) Inventory() (*currency.Inventory, error) {
	names := make([]string, 0, len(c.till))
	for name := range c.till {
		names = append(names, name)
	}
	sort.Strings(names)

	inv := currency.NewInventory()
	errs := make([]error, 0)
	for _, name := range names {
		count := c.till[name]
		e, err := currency.ParseElement(name)
		if err != nil {
			errs = append(errs, errors.Annotate(err, "config till"))
			continue
		}
		if count < 0 {
			errs = append(errs, errors.NotValidf("config till %s count=%d", name, count))
			continue
		}
		inv.Add(e, uint(count))
	}
	if err := helpers.FoldErrors(errs); err != nil {
		return nil, err
	}
	return inv, nil
}

func (c *Config) read(log *log2.Log, fs FullReader, source Source, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		*errs = append(*errs, errors.Errorf("config duplicate source=%s", source.Name))
		return
	}
	log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	c.Till = nil
	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}
	for name, count := range c.Till {
		c.till[name] += count
	}
	c.Till = nil

	var includes []Source
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func Read(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		return nil, errors.Errorf("code error config.Read() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		osfs.SetBase(dir)
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
		till:        make(map[string]int),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, Source{Name: name}, &errs)
	}
	return c, helpers.FoldErrors(errs)
}

func MustRead(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := Read(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
