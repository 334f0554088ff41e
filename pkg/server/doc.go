// Package server ties the record store, graph builder and configuration
// loader together behind one facade. It plays the role a backend API
// would play in production: applications register types and factories
// (in code or via YAML), create records through it, and read them back
// through collection handles addressed by singular or plural name.
package server
