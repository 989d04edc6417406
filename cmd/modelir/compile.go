package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/born-ml/modelir/backend/cpu"
	"github.com/born-ml/modelir/dispatch"
	"github.com/born-ml/modelir/internal/envconfig"
	"github.com/born-ml/modelir/internal/ir"
	"github.com/born-ml/modelir/loader"
)

func CompileHandler(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	fp32, err := cmd.Flags().GetBool("fp32")
	if err != nil {
		return err
	}

	g, file, err := loader.LoadFile(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}
	defer file.Close()

	m, err := loader.Generate(g)
	if err != nil {
		return err
	}

	backend := cpu.New(cpu.WithStorage(envconfig.Storage), cpu.WithWorkers(envconfig.Workers))
	c := dispatch.NewConstructor(backend, dispatch.WithForceFP32(fp32))

	w := cmd.OutOrStdout()
	var nodes, skipped [][]string
	for _, list := range m.Lists {
		id := fmt.Sprintf("0x%x", list.ID)
		if list.Accelerator != ir.AccelCPU && list.Accelerator != ir.AccelNone {
			skipped = append(skipped, []string{id, list.Accelerator.String(), strconv.Itoa(len(list.Operators))})
			continue
		}
		compiled, err := c.Open(list)
		if err != nil {
			return err
		}
		for _, n := range compiled {
			nodes = append(nodes, []string{
				id, n.Name, string(n.Kernel), n.Precision.String(),
				strconv.Itoa(len(n.Inputs)), strconv.Itoa(len(n.Outputs)),
			})
		}
	}

	fmt.Fprintln(w, "  Nodes")
	headerTableRender(w, []string{"LIST", "OP", "KERNEL", "PRECISION", "IN", "OUT"}, nodes)

	if len(skipped) > 0 {
		fmt.Fprintln(w, "  Skipped")
		headerTableRender(w, []string{"LIST", "ACCELERATOR", "OPERATORS"}, skipped)
	}

	kernels := backend.Kernels()
	var counts [][]string
	for _, k := range slices.Sorted(maps.Keys(kernels)) {
		counts = append(counts, []string{string(k), strconv.Itoa(kernels[k])})
	}
	fmt.Fprintln(w, "  Kernels")
	headerTableRender(w, []string{"KERNEL", "COUNT"}, counts)

	arenaStats := c.Stats()
	poolStats := backend.Pool().Stats()
	fmt.Fprintln(w, "  Memory")
	mainTableRender(w, [][]string{
		{"materialized", strconv.Itoa(arenaStats.Materialized)},
		{"cache hits", strconv.Itoa(arenaStats.Hits)},
		{"released", strconv.Itoa(arenaStats.Released)},
		{"allocated", strconv.Itoa(poolStats.Allocated)},
		{"reused", strconv.Itoa(poolStats.Reused)},
		{"bytes", strconv.Itoa(poolStats.Bytes)},
	})
	return nil
}

func EnvHandler(cmd *cobra.Command, args []string) error {
	vars := envconfig.AsMap()
	var rows [][]string
	for _, k := range slices.Sorted(maps.Keys(vars)) {
		v := vars[k]
		rows = append(rows, []string{v.Name, fmt.Sprintf("%v", v.Value), v.Description})
	}
	headerTableRender(cmd.OutOrStdout(), []string{"NAME", "VALUE", "DESCRIPTION"}, rows)
	return nil
}
