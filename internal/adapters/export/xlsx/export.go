package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/phenrril/marina/internal/domain"
)

const dateLayout = "2006-01-02 15:04"

var (
	orderHeader = []any{"Pedido", "Fecha", "Estado", "Cliente", "Email", "Teléfono", "Dirección", "Ciudad", "Provincia", "CP", "Productos", "Unidades", "Total", "Notas"}
	visitHeader = []any{"Fecha", "IP", "País", "Ciudad", "User-Agent"}
)

// WriteOrders vuelca los pedidos a una planilla con una fila por pedido.
func WriteOrders(w io.Writer, orders []domain.Order) error {
	rows := make([][]any, 0, len(orders))
	for _, o := range orders {
		var items []string
		units := 0
		for _, it := range o.Items {
			items = append(items, fmt.Sprintf("%s (%s) x%d", it.ProductName, it.Size, it.Quantity))
			units += it.Quantity
		}
		rows = append(rows, []any{
			o.Number,
			o.CreatedAt.Format(dateLayout),
			string(o.Status),
			o.Customer.Name,
			o.Customer.Email,
			o.Customer.Phone,
			o.Customer.Address,
			o.Customer.City,
			o.Customer.Province,
			o.Customer.PostalCode,
			strings.Join(items, "; "),
			units,
			o.TotalAmount.InexactFloat64(),
			o.Notes,
		})
	}
	return write(w, "Pedidos", orderHeader, rows)
}

func WriteVisits(w io.Writer, visits []domain.Event) error {
	rows := make([][]any, 0, len(visits))
	for _, v := range visits {
		rows = append(rows, []any{v.Timestamp.Format(dateLayout), v.IP, v.Country, v.City, v.UserAgent})
	}
	return write(w, "Visitas", visitHeader, rows)
}

func write(w io.Writer, sheet string, header []any, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return err
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	return nil
}
