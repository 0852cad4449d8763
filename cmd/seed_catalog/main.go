// seed_catalog genera un script SQL para cargar productos y variantes desde un CSV del proveedor.
//
// Uso: go run ./cmd/seed_catalog [-utf8] [-out seed_catalog.sql] catalogo.csv
//
// Columnas (separador ';', con encabezado):
//
//	sku;nombre;unidad_base;stock_minimo;variante;unidad;factor;precio
//
// Una fila por variante; las filas con el mismo sku forman un producto. Los archivos
// exportados desde Excel vienen en ISO-8859-1, que es la lectura por defecto.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// namespace fijo: el mismo sku genera siempre el mismo ID.
var namespace = uuid.MustParse("6f1c2a8e-3d4b-5c6d-8e9f-0a1b2c3d4e5f")

type variantRow struct {
	name   string
	unit   string
	factor decimal.Decimal
	price  decimal.Decimal
}

type productRow struct {
	sku      string
	name     string
	baseUnit string
	minStock decimal.Decimal
	variants []variantRow
}

func main() {
	utf8 := flag.Bool("utf8", false, "el CSV ya viene en UTF-8")
	outPath := flag.String("out", "seed_catalog.sql", "archivo SQL de salida")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_catalog [-utf8] [-out archivo.sql] catalogo.csv")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var in io.Reader = f
	if !*utf8 {
		in = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	products, err := readCatalog(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := writeSQL(out, products); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}

	variants := 0
	for _, p := range products {
		variants += len(p.variants)
	}
	fmt.Printf("Generado %s: %d productos, %d variantes\n", *outPath, len(products), variants)
}

// readCatalog agrupa las filas por sku. Acepta decimales con coma.
func readCatalog(r io.Reader) ([]productRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = 8

	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	bySKU := map[string]*productRow{}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		sku := strings.ToUpper(rec[0])
		if sku == "" || rec[1] == "" || rec[2] == "" || rec[4] == "" {
			return nil, fmt.Errorf("línea %d: sku, nombre, unidad_base y variante son obligatorios", line)
		}
		minStock, err := parseNumber(rec[3])
		if err != nil {
			return nil, fmt.Errorf("línea %d: stock_minimo: %w", line, err)
		}
		factor, err := parseNumber(rec[6])
		if err != nil || !factor.IsPositive() {
			return nil, fmt.Errorf("línea %d: factor debe ser mayor a cero", line)
		}
		price, err := parseNumber(rec[7])
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("línea %d: precio inválido", line)
		}

		p, ok := bySKU[sku]
		if !ok {
			p = &productRow{sku: sku, name: rec[1], baseUnit: rec[2], minStock: minStock}
			bySKU[sku] = p
		}
		unit := rec[5]
		if unit == "" {
			unit = p.baseUnit
		}
		p.variants = append(p.variants, variantRow{name: rec[4], unit: unit, factor: factor, price: price})
	}

	out := make([]productRow, 0, len(bySKU))
	for _, p := range bySKU {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].sku < out[j].sku })
	return out, nil
}

func parseNumber(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

// writeSQL emite inserts idempotentes: el producto por sku y la variante por (producto, nombre).
// Stock y costos no se tocan; entran con compras.
func writeSQL(w io.Writer, products []productRow) error {
	var b strings.Builder
	b.WriteString("-- Catálogo generado por seed_catalog\n\n")
	for _, p := range products {
		productID := uuid.NewSHA1(namespace, []byte(p.sku)).String()
		fmt.Fprintf(&b, "INSERT INTO products (id, sku, name, base_unit, min_stock)\n")
		fmt.Fprintf(&b, "VALUES ('%s', '%s', '%s', '%s', %s)\n",
			productID, escapeSQL(p.sku), escapeSQL(p.name), escapeSQL(p.baseUnit), p.minStock.String())
		b.WriteString("ON CONFLICT (sku) DO UPDATE SET name = EXCLUDED.name, min_stock = EXCLUDED.min_stock, updated_at = NOW();\n")
		for _, v := range p.variants {
			variantID := uuid.NewSHA1(namespace, []byte(p.sku+"/"+v.name)).String()
			fmt.Fprintf(&b, "INSERT INTO product_variants (id, product_id, name, unit, conversion_to_base, sell_price)\n")
			fmt.Fprintf(&b, "SELECT '%s', id, '%s', '%s', %s, %s FROM products WHERE sku = '%s'\n",
				variantID, escapeSQL(v.name), escapeSQL(v.unit), v.factor.String(), v.price.String(), escapeSQL(p.sku))
			b.WriteString("ON CONFLICT (product_id, name) DO UPDATE SET unit = EXCLUDED.unit, conversion_to_base = EXCLUDED.conversion_to_base, sell_price = EXCLUDED.sell_price, updated_at = NOW();\n")
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
