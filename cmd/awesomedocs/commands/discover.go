package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"git.home.luguber.info/inful/awesometheme/internal/config"
	"git.home.luguber.info/inful/awesometheme/internal/docs"
	"git.home.luguber.info/inful/awesometheme/internal/navtree"
)

// DiscoverCmd implements the 'discover' command.
type DiscoverCmd struct{}

func (d *DiscoverCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	return RunDiscover(cfg, os.Stdout)
}

// RunDiscover prints the discovered documents, the navigation tree and any
// toctree problems.
func RunDiscover(cfg *config.Config, out io.Writer) error {
	res, err := docs.NewDiscovery(cfg.Source, cfg.Project.Language).Discover()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Documents (%d):\n", len(res.Documents))
	for _, doc := range res.Documents {
		_, _ = fmt.Fprintf(out, "  %-30s %s\n", doc.Name, doc.Title)
	}
	if len(res.Assets) > 0 {
		_, _ = fmt.Fprintf(out, "Assets (%d):\n", len(res.Assets))
		for _, a := range res.Assets {
			_, _ = fmt.Fprintf(out, "  %s\n", a.RelPath)
		}
	}

	tree, problems := navtree.Build(res, cfg.Source.RootDoc)
	_, _ = fmt.Fprintln(out, "Navigation:")
	if tree.Root != nil {
		printNode(out, tree.Root, 1)
	}
	for _, p := range problems {
		_, _ = fmt.Fprintf(out, "warning: %s\n", p.Error())
	}
	return nil
}

func printNode(out io.Writer, n *navtree.Node, depth int) {
	label := n.Title
	if n.External() {
		label += " <" + n.URL + ">"
	}
	_, _ = fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth), label)
	for _, c := range n.Children {
		printNode(out, c, depth+1)
	}
}
