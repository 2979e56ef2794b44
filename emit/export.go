package emit

import (
	"fmt"

	"ariga.io/atlas/sql/migrate"
)

// Export writes a rendered batch into a versioned migration directory using
// the given formatter (golang-migrate, goose, flyway and friends via
// atlas sqltool, or migrate.DefaultFormatter). The batch is typically the
// output of a dry-run, making the emitted SQL reviewable and replayable by
// standard migration tooling.
func Export(dir migrate.Dir, fmtr migrate.Formatter, name string, result *BatchResult) error {
	if len(result.Rendered) == 0 {
		return fmt.Errorf("emit: exporting %q: batch has no rendered statements", name)
	}
	plan := &migrate.Plan{
		Name:          name,
		Transactional: true,
	}
	for _, r := range result.Rendered {
		plan.Changes = append(plan.Changes, &migrate.Change{
			Cmd:     r.Text,
			Comment: r.Name,
		})
	}
	files, err := fmtr.Format(plan)
	if err != nil {
		return fmt.Errorf("emit: formatting migration %q: %w", name, err)
	}
	for _, f := range files {
		if err := dir.WriteFile(f.Name(), f.Bytes()); err != nil {
			return fmt.Errorf("emit: writing migration file %q: %w", f.Name(), err)
		}
	}
	sum, err := dir.Checksum()
	if err != nil {
		return fmt.Errorf("emit: computing migration checksum: %w", err)
	}
	return migrate.WriteSumFile(dir, sum)
}
