package repository

// Repos agrupa los repositorios atados a una misma transacción.
// Los orquestadores reciben este valor dentro de TxRunner.Run.
type Repos struct {
	Products  ProductRepository
	Variants  VariantRepository
	Mutations StockMutationRepository
	Customers CustomerRepository
	Sales     SaleRepository
	Debts     DebtRepository
	Returns   ReturnRepository
	Purchases PurchaseRepository
}
