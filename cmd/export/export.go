// Package export contains the ledger-to-CSV export command.
package export

import (
	"context"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"rmarinho/granabot/cmd/root"
	"rmarinho/granabot/internal/ledger"
	"rmarinho/granabot/internal/models"
)

var (
	sheet  string
	output string
)

// Cmd is the export command.
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Exporta uma planilha do ledger para CSV.",
	Long: `Lê uma das planilhas (gastos ou receitas) e grava um arquivo CSV
local com as colunas nomeadas.`,
	RunE: run,
}

func init() {
	Cmd.Flags().StringVarP(&sheet, "sheet", "s", "gastos", "Planilha a exportar: gastos ou receitas")
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Arquivo CSV de saída")
	_ = Cmd.MarkFlagRequired("output")
}

// expenseCSV is the cash-expense export layout.
type expenseCSV struct {
	Date        string `csv:"Data"`
	Description string `csv:"Descrição"`
	Amount      string `csv:"Valor"`
	Category    string `csv:"Categoria"`
	Subcategory string `csv:"Subcategoria"`
	Method      string `csv:"Método"`
	Recurring   string `csv:"Recorrente"`
	Notes       string `csv:"Observações"`
}

// incomeCSV is the income export layout.
type incomeCSV struct {
	Date        string `csv:"Data"`
	Description string `csv:"Descrição"`
	Amount      string `csv:"Valor"`
	Category    string `csv:"Categoria"`
	Method      string `csv:"Método"`
	Recurring   string `csv:"Recorrente"`
	Notes       string `csv:"Observações"`
}

func run(cmd *cobra.Command, args []string) error {
	cfg := root.Config()
	log := root.Logger()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := ledger.NewSheetsStore(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsFile, log)
	if err != nil {
		return fmt.Errorf("connecting to spreadsheet: %w", err)
	}

	var name string
	switch sheet {
	case "gastos":
		name = cfg.Sheets.Expenses
	case "receitas":
		name = cfg.Sheets.Income
	default:
		return fmt.Errorf("unknown sheet %q (use gastos or receitas)", sheet)
	}

	table, err := store.ReadTable(ctx, name)
	if err != nil {
		return fmt.Errorf("reading sheet %s: %w", name, err)
	}
	if len(table) > 0 {
		table = table[1:]
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if sheet == "gastos" {
		records := make([]expenseCSV, 0, len(table))
		for _, row := range table {
			records = append(records, expenseCSV{
				Date:        cell(row, models.ExpenseColDate),
				Description: cell(row, models.ExpenseColDescription),
				Amount:      cell(row, models.ExpenseColAmount),
				Category:    cell(row, models.ExpenseColCategory),
				Subcategory: cell(row, models.ExpenseColSubcategory),
				Method:      cell(row, models.ExpenseColMethod),
				Recurring:   cell(row, models.ExpenseColRecurring),
				Notes:       cell(row, models.ExpenseColNotes),
			})
		}
		if err := gocsv.MarshalFile(&records, f); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		log.WithField("rows", len(records)).Info("Exported expenses")
	} else {
		records := make([]incomeCSV, 0, len(table))
		for _, row := range table {
			records = append(records, incomeCSV{
				Date:        cell(row, models.IncomeColDate),
				Description: cell(row, models.IncomeColDescription),
				Amount:      cell(row, models.IncomeColAmount),
				Category:    cell(row, models.IncomeColCategory),
				Method:      cell(row, models.IncomeColMethod),
				Recurring:   cell(row, models.IncomeColRecurring),
				Notes:       cell(row, models.IncomeColNotes),
			})
		}
		if err := gocsv.MarshalFile(&records, f); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		log.WithField("rows", len(records)).Info("Exported income")
	}

	fmt.Printf("Exportado para %s\n", output)
	return nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
