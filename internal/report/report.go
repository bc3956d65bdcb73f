// Package report renders a full chain analysis as Markdown or as a
// standalone HTML page.
package report

import (
	"fmt"
	stdhtml "html"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gomarkov/internal/analysis"
	"gomarkov/internal/linalg"
)

// Markdown renders the analysis as GitHub-flavoured Markdown tables.
func Markdown(full *analysis.FullAnalysis) string {
	var b strings.Builder
	est := full.Estimate

	fmt.Fprintf(&b, "# Credit migration analysis\n\n")
	fmt.Fprintf(&b, "- Analysis ID: `%s`\n", full.ID)
	fmt.Fprintf(&b, "- Generated: %s\n", full.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Matrix fingerprint: `%s`\n", full.Fingerprint)
	fmt.Fprintf(&b, "- Observations: %d across %d states\n\n", est.Stats.TotalTransitions, len(est.States))

	b.WriteString("## Transition matrix\n\n")
	writeMatrix(&b, est.States, est.TransitionMatrix)

	b.WriteString("\n## Observations per origin\n\n")
	b.WriteString("| State | Count |\n|---|---:|\n")
	for _, s := range est.States {
		fmt.Fprintf(&b, "| %s | %d |\n", label(s), est.Stats.CountPerState[s])
	}
	if len(est.Stats.StarvedStates) > 0 {
		fmt.Fprintf(&b, "\nStates without outgoing observations (treated as absorbing): %s\n",
			labels(est.Stats.StarvedStates))
	}

	if st := full.Stationary; st != nil {
		b.WriteString("\n## Stationary distribution\n\n")
		b.WriteString("| State | Probability |\n|---|---:|\n")
		for i, s := range est.States {
			fmt.Fprintf(&b, "| %s | %.6f |\n", label(s), st.Vector[i])
		}
		status := fmt.Sprintf("converged after %d iterations", st.Iterations)
		if !st.Converged {
			status = fmt.Sprintf("did not converge in %d iterations (%s)", st.Iterations, st.Method)
		}
		fmt.Fprintf(&b, "\nPower iteration %s.\n", status)
	}

	if mp := full.MarkovProperties; mp != nil {
		b.WriteString("\n## Chain structure\n\n")
		b.WriteString("| Property | Value |\n|---|---|\n")
		fmt.Fprintf(&b, "| Stochastic | %s (max deviation %.2e) |\n", yesNo(mp.Stochastic), mp.StochasticDeviation)
		fmt.Fprintf(&b, "| Doubly stochastic | %s |\n", yesNo(mp.DoublyStochastic))
		fmt.Fprintf(&b, "| Irreducible | %s |\n", yesNo(mp.Irreducible))
		fmt.Fprintf(&b, "| Aperiodic | %s |\n", yesNo(mp.Aperiodic))
		fmt.Fprintf(&b, "| Ergodic | %s |\n", yesNo(mp.Ergodic))
		fmt.Fprintf(&b, "| Absorbing states | %s |\n", listOrNone(mp.AbsorbingStates))
	}

	if c := full.Classification; c != nil {
		b.WriteString("\n## State classification\n\n")
		b.WriteString("| State | Class | Mean absorption time | Expected steps |\n|---|---|---:|---:|\n")
		for _, s := range c.Absorbing {
			fmt.Fprintf(&b, "| %s | absorbing | | |\n", label(s.State))
		}
		for _, s := range c.Transient {
			steps := "n/a"
			if s.ExpectedSteps != nil {
				steps = fmt.Sprintf("%.4f", *s.ExpectedSteps)
			}
			fmt.Fprintf(&b, "| %s | transient | %.4f | %s |\n", label(s.State), s.MeanAbsorptionTime, steps)
		}
		for _, s := range c.Recurrent {
			fmt.Fprintf(&b, "| %s | recurrent | | |\n", label(s.State))
		}
	}

	if p := full.MatrixProperties; p != nil {
		writeProperties(&b, p)
	}

	if len(full.Errors) > 0 {
		b.WriteString("\n## Unavailable sections\n\n")
		writeErrors(&b, full.Errors)
	}
	return b.String()
}

// HTML renders Markdown(full) as a complete HTML page. Raw HTML in the
// markdown is dropped.
func HTML(full *analysis.FullAnalysis) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Credit migration analysis " + full.ID.String(),
		Flags: html.CommonFlags | html.CompletePage | html.SkipHTML,
	})
	return markdown.ToHTML([]byte(Markdown(full)), p, renderer)
}

func writeMatrix(b *strings.Builder, states []string, m [][]float64) {
	b.WriteString("| From \\ To |")
	for _, s := range states {
		fmt.Fprintf(b, " %s |", label(s))
	}
	b.WriteString("\n|---|")
	for range states {
		b.WriteString("---:|")
	}
	b.WriteString("\n")
	for i, s := range states {
		fmt.Fprintf(b, "| **%s** |", label(s))
		for _, v := range m[i] {
			fmt.Fprintf(b, " %.4f |", v)
		}
		b.WriteString("\n")
	}
}

func writeProperties(b *strings.Builder, p *linalg.MatrixProperties) {
	b.WriteString("\n## Matrix properties\n\n")
	b.WriteString("| Property | Value |\n|---|---|\n")
	if p.Determinant != nil {
		fmt.Fprintf(b, "| Determinant | %.6f |\n", *p.Determinant)
	}
	if p.Trace != nil {
		fmt.Fprintf(b, "| Trace | %.6f |\n", *p.Trace)
	}
	if p.Rank != nil {
		fmt.Fprintf(b, "| Rank | %d |\n", *p.Rank)
	}
	if p.Norms != nil {
		fmt.Fprintf(b, "| Frobenius norm | %.6f |\n", p.Norms.Frobenius)
		fmt.Fprintf(b, "| Infinity norm | %.6f |\n", p.Norms.Infinity)
		if p.Norms.Spectral != nil {
			fmt.Fprintf(b, "| Spectral (dominant modulus) | %.6f |\n", *p.Norms.Spectral)
		}
	}
	if p.Condition != nil {
		if p.Condition.IsInfinite() {
			b.WriteString("| Condition (heuristic) | Infinity |\n")
		} else {
			fmt.Fprintf(b, "| Condition (heuristic) | %.6f |\n", float64(*p.Condition))
		}
	}
	if p.Eigenvalues != nil {
		values := make([]string, len(p.Eigenvalues.Values))
		for i, v := range p.Eigenvalues.Values {
			values[i] = fmt.Sprintf("%.6f", v)
			if im := p.Eigenvalues.Imaginary[i]; im != 0 {
				values[i] = fmt.Sprintf("%.6f%+.6fi", v, im)
			}
		}
		fmt.Fprintf(b, "| Eigenvalues | %s |\n", strings.Join(values, ", "))
	}
	if len(p.Errors) > 0 {
		b.WriteString("\nUnavailable properties:\n\n")
		writeErrors(b, p.Errors)
	}
}

func writeErrors(b *strings.Builder, errs map[string]string) {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(b, "- `%s`: %s\n", name, label(errs[name]))
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return labels(items)
}

// markdownEscaper neutralizes characters that would end a table cell or
// start emphasis or code inside one.
var markdownEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"|", "\\|",
	"`", "\\`",
	"*", "\\*",
	"_", "\\_",
	"\n", " ",
	"\r", " ",
)

// label makes a user-supplied state label safe to embed in markdown and in
// the HTML rendered from it.
func label(s string) string {
	return markdownEscaper.Replace(stdhtml.EscapeString(s))
}

func labels(items []string) string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = label(s)
	}
	return strings.Join(out, ", ")
}
