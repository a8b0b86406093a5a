// Package cli implements the hypertop command-line interface.
//
// # Command Structure
//
// The root command opens the dashboard. Subcommands cover the rest:
//
//	hypertop              - Full-screen dashboard (needs a terminal)
//	hypertop dump         - Print one snapshot as YAML or JSON
//	hypertop init         - Write a config file, interactively or not
//	hypertop doctor       - Report which data sources work on this machine
//	hypertop version      - Print build information
//	hypertop completion   - Generate shell completion scripts
//
// # Configuration
//
// Every command loads the config file (--config, then ./.hypertop.yaml, then
// ~/.config/hypertop/config.yaml), applies HYPERTOP_* environment overrides,
// then applies global flags such as --refresh, --backend and --sort on top.
// The merged config is validated before anything is opened.
//
// # Sessions
//
// A session bundles what a sampling command needs: the file logger, the
// backend for the configured platform and, when metrics.listen is set, a
// Prometheus endpoint fed by the backend's fetch observer. Commands close
// the session when they finish.
package cli
