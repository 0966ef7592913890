package services

// ObjectTypes lists the record types a dynamic field can be attached to.
var ObjectTypes = []string{
	"Ticket",
	"Article",
	"CustomerUser",
	"CustomerCompany",
}

// DBMSTypes lists the supported remote database backends.
var DBMSTypes = []string{
	"mysql",
	"postgresql",
	"oracle",
	"mssql",
	"odbc",
}
