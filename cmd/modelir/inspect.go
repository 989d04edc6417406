package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/modelir/internal/serialization"
	"github.com/born-ml/modelir/loader"
)

// loadOptions builds loader options from the environment and the command
// flags.
func loadOptions(cmd *cobra.Command) (loader.Options, error) {
	opts := loader.DefaultOptions()
	v, err := cmd.Flags().GetString("validation")
	if err != nil {
		return opts, err
	}
	switch strings.ToLower(v) {
	case "":
	case "strict":
		opts.Validation = loader.ValidationStrict
	case "normal":
		opts.Validation = loader.ValidationNormal
	case "none":
		opts.Validation = loader.ValidationNone
	default:
		return opts, fmt.Errorf("invalid validation level %q", v)
	}

	sum, err := cmd.Flags().GetString("sha256")
	if err != nil {
		return opts, err
	}
	if sum != "" {
		if opts.Expected, err = serialization.ParseChecksum(sum); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func InspectHandler(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	showTensors, err := cmd.Flags().GetBool("tensors")
	if err != nil {
		return err
	}

	g, file, err := loader.LoadFile(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}
	defer file.Close()

	w := cmd.OutOrStdout()
	attr := g.Attribute()
	summary := [][]string{
		{"format", g.ModelType().String()},
		{"version", strconv.FormatUint(uint64(attr.Version), 10)},
		{"legacy", g.LegacyModel().String()},
		{"relax fp16", strconv.FormatBool(g.RelaxFloat32())},
		{"fingerprint", g.Fingerprint()},
		{"operators", strconv.Itoa(len(g.Operators()))},
		{"tensors", strconv.Itoa(len(g.Tensors()))},
		{"binaries", strconv.Itoa(len(g.Binaries()))},
	}
	fmt.Fprintln(w, "  Model")
	mainTableRender(w, summary)

	var infos [][]string
	for _, gi := range g.GraphInfos() {
		infos = append(infos, []string{gi.Name, joinInt32(gi.Inputs), joinInt32(gi.Outputs)})
	}
	if len(infos) > 0 {
		fmt.Fprintln(w, "  Graphs")
		headerTableRender(w, []string{"NAME", "INPUTS", "OUTPUTS"}, infos)
	}

	var ops [][]string
	for _, op := range g.Operators() {
		options := "-"
		if o := g.Options(op); o != nil {
			options = o.Name
		}
		ops = append(ops, []string{
			strconv.Itoa(int(op.Index)), op.Name, op.Accelerator.String(),
			joinInt32(op.Inputs), joinInt32(op.Outputs), options,
		})
	}
	fmt.Fprintln(w, "  Operators")
	headerTableRender(w, []string{"INDEX", "NAME", "ACCELERATOR", "INPUTS", "OUTPUTS", "OPTIONS"}, ops)

	if showTensors {
		var tensors [][]string
		for _, t := range g.Tensors() {
			tensors = append(tensors, []string{
				strconv.Itoa(int(t.Index)), t.Name, t.Type.String(),
				joinInt32(t.Shape), strconv.Itoa(t.Size), strconv.FormatBool(len(t.Data) > 0),
			})
		}
		fmt.Fprintln(w, "  Tensors")
		headerTableRender(w, []string{"INDEX", "NAME", "TYPE", "SHAPE", "SIZE", "CONST"}, tensors)
	}

	var bins [][]string
	for _, b := range g.Binaries() {
		bins = append(bins, []string{
			strconv.Itoa(int(b.Index)), b.Name, b.Accelerator.String(), strconv.Itoa(b.Size),
		})
	}
	if len(bins) > 0 {
		fmt.Fprintln(w, "  Binaries")
		headerTableRender(w, []string{"INDEX", "NAME", "ACCELERATOR", "SIZE"}, bins)
	}
	return nil
}

func joinInt32(vals []int32) string {
	s := make([]string, len(vals))
	for i, v := range vals {
		s[i] = strconv.Itoa(int(v))
	}
	return "[" + strings.Join(s, ",") + "]"
}

func mainTableRender(w io.Writer, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	for _, r := range rows {
		table.Append(append([]string{""}, r...))
	}
	table.Render()
	fmt.Fprintln(w)
}

func headerTableRender(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(rows)
	table.Render()
	fmt.Fprintln(w)
}
