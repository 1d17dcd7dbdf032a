package telemetry

import (
	"fmt"
	"io"

	"github.com/robinvdvleuten/beancount-binance/output"
)

// writeTree writes one timer tree:
//
//	extract bina-2021-processed.csv: 12ms
//	├─ read: 3ms
//	└─ synthesize: 9ms
func writeTree(w io.Writer, root *timerNode, styles *output.Styles) {
	name, duration := root.name, output.FormatDuration(root.duration())
	if styles != nil {
		name, duration = styles.Keyword(name), styles.Duration(root.duration())
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", name, duration)

	writeChildren(w, root.children, "", styles)
}

func writeChildren(w io.Writer, children []*timerNode, prefix string, styles *output.Styles) {
	for i, child := range children {
		branch, extension := "├─ ", "│  "
		if i == len(children)-1 {
			branch, extension = "└─ ", "   "
		}

		tree, duration := prefix+branch, output.FormatDuration(child.duration())
		if styles != nil {
			tree, duration = styles.Dim(tree), styles.Duration(child.duration())
		}
		_, _ = fmt.Fprintf(w, "%s%s: %s\n", tree, child.name, duration)

		writeChildren(w, child.children, prefix+extension, styles)
	}
}
