package energy

// Energies are in GeV and rigidities in GV.
const (
	EeV = 1e9
	PeV = 1e6
	TeV = 1e3
	GeV = 1.0
	MeV = 1e-3
	KeV = 1e-6

	EV = 1e9
	PV = 1e6
	TV = 1e3
	GV = 1.0
	MV = 1e-3
	KV = 1e-6
)

// Particle masses in GeV.
const (
	NucleonMass  = 0.9389187543299999
	ElectronMass = 0.51099895e-3
)
