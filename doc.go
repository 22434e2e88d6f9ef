// Package persist adds automatic persistence to reducer-driven state.
//
// A persisted reducer wraps an ordinary slice reducer. Every case reducer it
// registers bumps the slice's version in an update Tracker; listeners
// installed on the store notice the slice is dirty after each dispatch and
// hand it to a per-slice write queue, which stores the latest state as JSON
// under "persisted-storage-<name>" through the installed storage handler.
//
// When a store is configured each persisted slice is rehydrated from storage
// by dispatching "<name>/@@INIT-PERSIST". Writes for a slice are held back
// until its hydration has been dispatched.
//
//	persist.InstallStorageHandler(storage.NewMemoryStorage())
//	counter, _ := persist.NewPersistedSlice(persist.SliceOptions[Counter]{
//		Name:         "counter",
//		InitialState: store.InitialValue(Counter{}),
//		Reducers: map[string]store.CaseReducer[Counter]{
//			"increment": func(draft *Counter, _ store.Action) store.Result[Counter] {
//				draft.Value++
//				return store.Mutated[Counter]()
//			},
//		},
//	})
//	ps, _ := persist.Default().ConfigureStore(persist.StoreOptions{
//		Reducers: map[string]store.SliceReducer{"counter": counter},
//	})
//	_ = ps.Dispatch(counter.Action("increment", nil))
//
// Every piece of shared state lives on a PersistenceContext. The package-level
// helpers operate on Default().
package persist
