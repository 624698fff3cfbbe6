/*
Package ports defines the driven ports (interfaces) for the Espalier editor.

These interfaces decouple the link state machine and the consistency checker
from the surrounding workflow model, allowing the editor to work with various
block registries, schema sources, and persistence backends.

# Key Interfaces

  - SchemaResolver: Resolves the table schema backing a list variable.
  - BlockRegistry: Resolves blocks, producers, and consumer positions within
    a workflow.
  - BlockCreator: The single mutating external call: creating a List Tools block.
  - ConfigStore: Persists per-question DynamicOptionsConfig values.
  - DistributedLocker: Coordinates per-question write serialization across replicas.
*/
package ports
