// Package repository define las entidades y los contratos de persistencia del
// grant authorization_code.
//
// Las implementaciones viven en internal/store/adapters/ (pg, sqlite).
//
//	┌──────────────────────────────────────────────────────────┐
//	│     registry / services/oauth / webservice / sweeper     │
//	└──────────────────────────────────────────────────────────┘
//	                          │
//	                          ▼
//	┌──────────────────────────────────────────────────────────┐
//	│            domain/repository (interfaces)                │
//	│  ClientRepository, AuthCodeRepository, ServiceRepository │
//	└──────────────────────────────────────────────────────────┘
//	                          │
//	              ┌───────────┴───────────┐
//	              ▼                       ▼
//	       ┌─────────────┐         ┌─────────────┐
//	       │  adapters/  │         │  adapters/  │
//	       │     pg      │         │   sqlite    │
//	       └─────────────┘         └─────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Errores de dominio están en errors.go; los adapters traducen los
//     errores del driver a esos sentinels
//   - Las unicidades (code, public client id) las garantiza el store con
//     constraints, nunca check-then-insert
package repository
