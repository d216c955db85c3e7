package records

import (
	"fmt"
	"slices"
	"strings"

	"record-sync/core/reconcile"
	"record-sync/core/remote"
)

const (
	EntityPriceList             = "price-list"
	EntityPriceListKm           = "price-list-km"
	EntityAuthorizationSupplier = "authorization-supplier"
)

const (
	priceListMeta             = "Cennik_part"
	authorizationSupplierMeta = "Authorization_supplier"

	supplierKey = "z_f_co_dodavatel"
	callTypeKey = "z_f_co_type_sc"
)

var udoValueCollection = remote.Collection{Name: "UdoValue", DTOs: "UdoValue.9"}

// tableJoin resolves a foreign-key column to the name of the referenced record.
type tableJoin struct {
	table string
	alias string
}

var (
	businessPartnerJoin = tableJoin{table: "BusinessPartner", alias: "bp"}
	serviceCallTypeJoin = tableJoin{table: "ServiceCallType", alias: "sct"}
)

func businessPartners() *reconcile.Reference {
	return &reconcile.Reference{
		Name: "business-partner",
		Query: remote.Query{
			Statement: "SELECT bp.id AS id, bp.name AS name FROM BusinessPartner bp",
			DTOs:      "BusinessPartner.23",
		},
	}
}

func serviceCallTypes() *reconcile.Reference {
	return &reconcile.Reference{
		Name: "service-call-type",
		Query: remote.Query{
			Statement: "SELECT sct.id AS id, sct.name AS name FROM ServiceCallType sct",
			DTOs:      "ServiceCallType.15",
		},
	}
}

// currentQuery selects every record of udoMeta. Foreign-key columns are
// joined so they come back as display names, matching the spreadsheet.
func currentQuery(udoMeta string, columns reconcile.Columns, joins map[string]tableJoin, filter, dtos string) remote.Query {
	selects := make([]string, 0, len(columns))
	var leftJoins []string
	for _, c := range columns {
		switch j, joined := joins[c.Key]; {
		case c.Key == reconcile.IDKey:
			selects = append(selects, "uv.id AS id")
		case joined:
			selects = append(selects, fmt.Sprintf("%s.name AS %s", j.alias, c.Key))
			leftJoins = append(leftJoins, fmt.Sprintf("LEFT JOIN %s %s ON uv.udf.%s = %s.id", j.table, j.alias, c.Key, j.alias))
		default:
			selects = append(selects, fmt.Sprintf("uv.udf.%s AS %s", c.Key, c.Key))
		}
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(selects, ", "))
	b.WriteString(" FROM UdoMeta um JOIN UdoValue uv ON um.id = uv.meta")
	for _, j := range leftJoins {
		b.WriteString(" ")
		b.WriteString(j)
	}
	fmt.Fprintf(&b, " WHERE um.name = '%s'", udoMeta)
	if filter != "" {
		b.WriteString(" AND ")
		b.WriteString(filter)
	}

	return remote.Query{Statement: b.String(), DTOs: dtos}
}

// schemaQuery lists the field definitions of udoMeta and the owning schema id.
func schemaQuery(udoMeta string) remote.Query {
	return remote.Query{
		Statement: "SELECT udf_meta.id AS id, udf_meta.description AS description, udf_meta.name AS name, udo_meta.id AS udoMetaId " +
			"FROM UdoMeta udo_meta JOIN UdfMeta udf_meta ON udf_meta.id IN udo_meta.udfMetas " +
			fmt.Sprintf("WHERE udo_meta.name = '%s'", udoMeta),
		DTOs: "UdfMeta.19;UdoMeta.9",
	}
}

// PriceList is the per-job price list, exported as one sheet per supplier.
func PriceList() *reconcile.Entity {
	columns := reconcile.Columns{
		{Key: reconcile.IDKey, Title: "ID"},
		{Key: supplierKey, Title: "Dodávateľ", Reference: businessPartners()},
		{Key: callTypeKey, Title: "Typ servisného volania", Reference: serviceCallTypes()},
		{Key: "z_f_co_typtagu", Title: "Typ tagu"},
		{Key: "z_f_co_neuspesna_inst", Title: "Neuspešná inštalácia"},
		{Key: "z_f_co_podkatsiete", Title: "Podkategória siete"},
		{Key: "z_f_co_typbudovy", Title: "Typ budovy"},
		{Key: "z_f_co_city", Title: "Mesto"},
		{Key: "z_f_co_street", Title: "Ulica"},
		{Key: "z_f_co_snumber", Title: "Číslo domu"},
		{Key: "z_f_co_time_from", Title: "Čas od"},
		{Key: "z_f_co_time_to", Title: "Čas do"},
		{Key: "z_f_co_cena", Title: "Cena"},
	}
	joins := map[string]tableJoin{supplierKey: businessPartnerJoin, callTypeKey: serviceCallTypeJoin}

	return &reconcile.Entity{
		Name:        EntityPriceList,
		Description: "Supplier price list per service call type and location",
		Columns:     columns,
		Current: currentQuery(priceListMeta, columns, joins, "uv.udf.z_f_co_km IS NULL",
			"UdoValue.9;UdoMeta.9;BusinessPartner.23;ServiceCallType.15"),
		Schema:     schemaQuery(priceListMeta),
		Collection: udoValueCollection,
		SheetName:  "Cennik",
		SplitBy:    supplierKey,
		FileName:   "cennik.xlsx",
	}
}

// PriceListKm is the per-kilometre rate of each supplier.
func PriceListKm() *reconcile.Entity {
	columns := reconcile.Columns{
		{Key: reconcile.IDKey, Title: "ID"},
		{Key: supplierKey, Title: "Dodávateľ", Reference: businessPartners()},
		{Key: "z_f_co_km", Title: "Cena za km"},
	}
	joins := map[string]tableJoin{supplierKey: businessPartnerJoin}

	return &reconcile.Entity{
		Name:        EntityPriceListKm,
		Description: "Supplier rate per kilometre",
		Columns:     columns,
		Current: currentQuery(priceListMeta, columns, joins, "uv.udf.z_f_co_km IS NOT NULL",
			"UdoValue.9;UdoMeta.9;BusinessPartner.23"),
		Schema:     schemaQuery(priceListMeta),
		Collection: udoValueCollection,
		SheetName:  "Cennik (km)",
		FileName:   "cennik-km.xlsx",
	}
}

// AuthorizationSupplier holds the master and partner passwords of each supplier.
func AuthorizationSupplier() *reconcile.Entity {
	columns := reconcile.Columns{
		{Key: reconcile.IDKey, Title: "ID"},
		{Key: supplierKey, Title: "Názov business partnera", Reference: businessPartners()},
		{Key: "z_f_co_pass_master", Title: "Heslo master"},
		{Key: "z_f_co_pass_user", Title: "Heslo partner"},
	}
	joins := map[string]tableJoin{supplierKey: businessPartnerJoin}

	return &reconcile.Entity{
		Name:        EntityAuthorizationSupplier,
		Description: "Supplier master and partner credentials",
		Columns:     columns,
		Current: currentQuery(authorizationSupplierMeta, columns, joins, "",
			"UdoValue.9;UdoMeta.9;BusinessPartner.23"),
		Schema:     schemaQuery(authorizationSupplierMeta),
		Collection: udoValueCollection,
		SheetName:  "Authorization Supplier",
		FileName:   "authorization-supplier.xlsx",
	}
}

// Registry resolves entity names to their configuration.
type Registry struct {
	entities []*reconcile.Entity
}

// NewRegistry creates a registry. Entity names must be unique.
func NewRegistry(entities ...*reconcile.Entity) *Registry {
	return &Registry{entities: entities}
}

// DefaultRegistry holds every entity kind the tool syncs.
func DefaultRegistry() *Registry {
	return NewRegistry(PriceList(), PriceListKm(), AuthorizationSupplier())
}

// Get returns the entity called name.
func (r *Registry) Get(name string) (*reconcile.Entity, error) {
	i := slices.IndexFunc(r.entities, func(e *reconcile.Entity) bool { return e.Name == name })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", reconcile.ErrUnknownEntity, name)
	}
	return r.entities[i], nil
}

// List returns the entities in registration order.
func (r *Registry) List() []*reconcile.Entity {
	return r.entities
}

// Names returns the entity names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entities))
	for i, e := range r.entities {
		names[i] = e.Name
	}
	return names
}
